package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"review_system/internal/api"    // Custom package for API handlers
	"review_system/internal/config" // Custom package for configuration
	"review_system/internal/mailer" // Custom package for mail delivery

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client; caching is optional and disabled when unconfigured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, title caching disabled")
	}

	// Setup the mailer; fall back to logging when SMTP is not configured
	var mail mailer.Mailer
	if cfg.SMTPAddr != "" {
		mail = &mailer.SMTPMailer{
			Addr:     cfg.SMTPAddr, // Relay address
			Host:     cfg.SMTPHost, // Relay host for auth
			Username: cfg.SMTPUser, // Auth username
			Password: cfg.SMTPPass, // Auth password
			From:     cfg.MailFrom, // Sender address
		}
	} else {
		logrus.Warn("SMTP_ADDR not set, confirmation codes are logged instead of mailed")
		mail = &mailer.LogMailer{}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Wire all v1 routes
	api.RegisterRoutes(r, db, redisClient, mail, cfg.JWTSecret)

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
