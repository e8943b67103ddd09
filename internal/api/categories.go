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

// CategoryRequest represents a category creation request
type CategoryRequest struct {
	Name string `json:"name" binding:"required"` // Name must be provided
	Slug string `json:"slug" binding:"required"` // Slug must be provided
}

// ListCategoriesHandler returns all categories, searchable by name substring
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pageParams(c) // Pagination parameters
		query := db.Model(&domain.Category{})   // Start building the query
		// Apply the name substring search if present
		if search := c.Query("search"); search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
		var total int64 // Total category count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count categories"})
			return
		}
		var categories []domain.Category // Slice to hold categories
		// Fetch the requested page
		if err := query.Order("slug").Offset(offset).Limit(pageSize).Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories":  categories,                  // List of categories
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of categories
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// CreateCategoryHandler creates a category; catalog management is restricted
func CreateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var req CategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		category := domain.Category{Name: req.Name, Slug: req.Slug} // Build the category
		if err := db.Create(&category).Error; err != nil {
			// Duplicate slug
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slug already exists"})
			return
		}
		// Category names are shown inside cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.JSON(http.StatusCreated, category) // Return the created category
	}
}

// DeleteCategoryHandler deletes a category by slug. Titles referencing it
// keep existing with a null category.
func DeleteCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var category domain.Category // The category being deleted
		if err := db.Where("slug = ?", c.Param("slug")).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		// Null out references, then delete, in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			// Detach titles from the category without deleting them
			if err := tx.Model(&domain.Title{}).Where("category_id = ?", category.ID).
				Update("category_id", nil).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&category).Error // Remove the category
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"slug":  category.Slug, // Category slug
				"error": err.Error(),   // Error message
			}).Error("Failed to delete category") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		// Cached title payloads embed the category
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.Status(http.StatusNoContent) // Return no content
	}
}
