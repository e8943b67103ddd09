package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"review_system/internal/domain"     // Importing domain models
	"review_system/internal/middleware" // Acting user helpers
	"review_system/internal/policy"     // Access policy decisions
	"review_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateUserRequest represents an admin user creation request
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`    // Username must be provided
	Email     string `json:"email" binding:"required,email"` // Email must be provided and well-formed
	FirstName string `json:"first_name"`                     // Optional first name
	LastName  string `json:"last_name"`                      // Optional last name
	Bio       string `json:"bio"`                            // Optional bio
	Role      string `json:"role"`                           // Optional role, defaults to user
}

// UpdateUserRequest represents a partial user update; nil fields are untouched
type UpdateUserRequest struct {
	Username  *string `json:"username"`   // New username
	Email     *string `json:"email"`      // New email
	FirstName *string `json:"first_name"` // New first name
	LastName  *string `json:"last_name"`  // New last name
	Bio       *string `json:"bio"`        // New bio
	Role      *string `json:"role"`       // New role, admin-only
}

// ListUsersHandler returns all users, searchable by username substring
func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pageParams(c) // Pagination parameters
		query := db.Model(&domain.User{})       // Start building the query
		// Apply the username substring search if present
		if search := c.Query("search"); search != "" {
			query = query.Where("username LIKE ?", "%"+search+"%")
		}
		var total int64 // Total user count
		if err := query.Count(&total).Error; err != nil {
			// If counting fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Slice to hold users
		// Fetch the requested page
		if err := query.Order("username").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       users,                       // List of users
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of users
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// CreateUserHandler lets an admin create a user directly with the full field set
func CreateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the username
		if !domain.ValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username is not allowed"})
			return
		}
		// Default and validate the role
		if req.Role == "" {
			req.Role = domain.RoleUser
		}
		if !domain.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		// Build and persist the user
		user := domain.User{
			Username:  req.Username,  // Username
			Email:     req.Email,     // Email address
			FirstName: req.FirstName, // First name
			LastName:  req.LastName,  // Last name
			Bio:       req.Bio,       // Bio
			Role:      req.Role,      // Role
		}
		if err := db.Create(&user).Error; err != nil {
			// Duplicate username or email
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already registered"})
			return
		}
		// Log the creation
		logrus.WithFields(logrus.Fields{
			"username": user.Username, // Username
			"role":     user.Role,     // Role
		}).Info("User created by admin")
		c.JSON(http.StatusCreated, user) // Return the created user
	}
}

// GetUserHandler returns one user; "me" resolves to the acting user, any
// other username requires user-directory access.
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		username := c.Param("username")    // Username from the path
		// "me" is an alias for the acting user
		if username == "me" {
			c.JSON(http.StatusOK, actor)
			return
		}
		// Any other username is admin-only
		if !policy.CanManageUsers(actor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var user domain.User // Fetch the requested user
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user) // Return the user
	}
}

// UpdateUserHandler applies a partial update; via "me" the field set is
// restricted (no role changes), otherwise admin-only with all fields.
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		username := c.Param("username")    // Username from the path
		var req UpdateUserRequest          // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // The user being updated
		self := username == "me"
		if self {
			user = *actor // "me" edits the acting user
		} else {
			// Any other username is admin-only
			if !policy.CanManageUsers(actor) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
				return
			}
			if err := db.Where("username = ?", username).First(&user).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
		}
		updates := map[string]any{} // Changed columns only
		if req.Username != nil {
			// A changed username must still be valid
			if !domain.ValidUsername(*req.Username) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username is not allowed"})
				return
			}
			updates["username"] = *req.Username
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.FirstName != nil {
			updates["first_name"] = *req.FirstName
		}
		if req.LastName != nil {
			updates["last_name"] = *req.LastName
		}
		if req.Bio != nil {
			updates["bio"] = *req.Bio
		}
		// Role changes are ignored through the "me" alias
		if req.Role != nil && !self {
			if !domain.ValidRole(*req.Role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
				return
			}
			updates["role"] = *req.Role
		}
		// Apply the update if anything changed
		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				// Duplicate username or email
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already registered"})
				return
			}
		}
		c.JSON(http.StatusOK, user) // Return the updated user
	}
}

// DeleteUserHandler removes a user; deleting through the "me" alias is never
// allowed, and everything else is admin-only.
func DeleteUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		username := c.Param("username")    // Username from the path
		// The "me" alias cannot be deleted, by anyone
		if username == "me" {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
			return
		}
		// Deleting users is admin-only
		if !policy.CanManageUsers(actor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var user domain.User // The user being deleted
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Delete the user together with their reviews and comments
		err := db.Transaction(func(tx *gorm.DB) error {
			// Remove comments on the user's reviews first
			if err := tx.Where("review_id IN (?)",
				tx.Model(&domain.Review{}).Select("id").Where("author_id = ?", user.ID),
			).Delete(&domain.Comment{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the user's own comments and reviews
			if err := tx.Where("author_id = ?", user.ID).Delete(&domain.Comment{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Where("author_id = ?", user.ID).Delete(&domain.Review{}).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&user).Error // Finally remove the user
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"username": username,    // Username being deleted
				"error":    err.Error(), // Error message
			}).Error("Failed to delete user") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"username": username,       // Deleted username
			"actor":    actor.Username, // Acting admin
		}).Info("User deleted")
		// Deleting the reviews changed title ratings; drop cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.Status(http.StatusNoContent) // Return no content
	}
}
