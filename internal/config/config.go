package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address, empty disables caching
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	SMTPAddr   string // SMTP relay address (host:port), empty disables mail
	SMTPHost   string // SMTP relay host for auth
	SMTPUser   string // SMTP auth username
	SMTPPass   string // SMTP auth password
	MailFrom   string // Sender address for confirmation mail
	IsProd     bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    os.Getenv("APP_PORT"),          // Application port
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     os.Getenv("DB_HOST"),           // Database host
		DBPort:     os.Getenv("DB_PORT"),           // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:  os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    redisDB,                        // Redis database number
		SMTPAddr:   os.Getenv("SMTP_ADDR"),         // SMTP relay address
		SMTPHost:   os.Getenv("SMTP_HOST"),         // SMTP relay host
		SMTPUser:   os.Getenv("SMTP_USER"),         // SMTP auth username
		SMTPPass:   os.Getenv("SMTP_PASS"),         // SMTP auth password
		MailFrom:   os.Getenv("MAIL_FROM"),         // Sender address
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment
	}
}
