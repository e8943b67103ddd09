package middleware

import (
	"net/http" // HTTP status codes

	"review_system/internal/domain" // Importing domain models
	"review_system/internal/policy" // Access policy decisions

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CurrentUserMiddleware loads the acting user from the database on each
// request, so role changes take effect immediately regardless of what an
// outstanding token claims.
func CurrentUserMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token refers to a user that no longer exists
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("currentUser", &user) // Store the acting user in context
		c.Next()                    // Proceed to the next handler
	}
}

// AdminOnlyMiddleware rejects requests from actors that may not manage the
// user directory. Must run after CurrentUserMiddleware.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentUser(c) // Get the acting user from context
		// Check the access policy
		if !policy.CanManageUsers(actor) {
			// If denied, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If allowed, proceed to the next handler
		c.Next()
	}
}

// CurrentUser returns the acting user stored by CurrentUserMiddleware, or nil
// when the request is anonymous.
func CurrentUser(c *gin.Context) *domain.User {
	v, exists := c.Get("currentUser") // Get the acting user from context
	if !exists {
		return nil // Anonymous request
	}
	user, ok := v.(*domain.User) // Assert the stored type
	if !ok {
		return nil // Unexpected type in context
	}
	return user
}
