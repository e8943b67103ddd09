package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"review_system/internal/domain" // Importing domain models
	"review_system/internal/mailer" // Confirmation code delivery
	"review_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// SignupRequest represents a signup request
type SignupRequest struct {
	Username string `json:"username" binding:"required"`       // Username must be provided
	Email    string `json:"email" binding:"required,email"`    // Email must be provided and well-formed
}

// TokenRequest represents a confirmation code exchange request
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`          // Username must be provided
	ConfirmationCode string `json:"confirmation_code" binding:"required"` // Code must be provided
}

// AuthResponse is the token exchange response
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// SignupHandler registers a user, or rotates the confirmation code for an
// existing username+email pair, and emails the fresh code.
func SignupHandler(db *gorm.DB, mail mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the username; "me" is reserved and the charset is restricted
		if !domain.ValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username is not allowed"})
			return
		}
		// Generate a fresh confirmation code
		code, err := utils.GenerateConfirmationCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate confirmation code"})
			return
		}
		// Hash the code for storage
		hash, err := utils.HashConfirmationCode(code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate confirmation code"})
			return
		}
		// Create the user, or rotate the code in place when the same
		// username+email pair signs up again. One transaction so a partial
		// signup is never observable.
		err = db.Transaction(func(tx *gorm.DB) error {
			var user domain.User // Look up an existing matching pair
			findErr := tx.Where("username = ? AND email = ?", req.Username, req.Email).First(&user).Error
			if findErr == nil {
				// Existing pair: rotate the confirmation code in place
				return tx.Model(&user).Update("confirmation_code", hash).Error
			}
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return findErr // Unexpected lookup error
			}
			// A username or email already taken by a different pair collides.
			// The unique constraints back this check up under races.
			var taken int64
			if err := tx.Model(&domain.User{}).
				Where("username = ? OR email = ?", req.Username, req.Email).
				Count(&taken).Error; err != nil {
				return err // Return error to rollback
			}
			if taken > 0 {
				return gorm.ErrDuplicatedKey // Duplicate pair
			}
			// New pair: create a pending user
			user = domain.User{Username: req.Username, Email: req.Email, Role: domain.RoleUser, ConfirmationCode: hash}
			return tx.Create(&user).Error
		})
		// Handle transaction result
		if err != nil {
			// A duplicate is the caller's fault; anything else is ours
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already registered"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"username": req.Username, // Username
				"error":    err.Error(),  // Error message
			}).Error("Signup failed") // Log the storage failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			return
		}
		// Email the confirmation code
		if err := mail.Send(req.Email, "Confirm your account", "Your confirmation code is: "+code); err != nil {
			logrus.WithFields(logrus.Fields{
				"username": req.Username, // Username
				"email":    req.Email,    // Recipient address
				"error":    err.Error(),  // Error message
			}).Error("Failed to send confirmation code") // Log delivery failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send confirmation code"})
			return
		}
		// Log the signup
		logrus.WithFields(logrus.Fields{
			"username": req.Username, // Username
			"email":    req.Email,    // Email address
		}).Info("Confirmation code issued")
		// Echo the accepted fields
		c.JSON(http.StatusOK, gin.H{"username": req.Username, "email": req.Email})
	}
}

// TokenHandler exchanges a confirmation code for a JWT session token
func TokenHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database, by username only
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			// Unknown username is not found, not unauthorized
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Compare the submitted code with the stored hash
		if !utils.CheckConfirmationCode(user.ConfirmationCode, req.ConfirmationCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid confirmation code"})
			return
		}
		// Generate a JWT bound to the user's identity and role
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
