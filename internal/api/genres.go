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

// GenreRequest represents a genre creation request
type GenreRequest struct {
	Name string `json:"name" binding:"required"` // Name must be provided
	Slug string `json:"slug" binding:"required"` // Slug must be provided
}

// ListGenresHandler returns all genres, searchable by name substring
func ListGenresHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pageParams(c) // Pagination parameters
		query := db.Model(&domain.Genre{})      // Start building the query
		// Apply the name substring search if present
		if search := c.Query("search"); search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
		var total int64 // Total genre count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count genres"})
			return
		}
		var genres []domain.Genre // Slice to hold genres
		// Fetch the requested page
		if err := query.Order("slug").Offset(offset).Limit(pageSize).Find(&genres).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch genres"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"genres":      genres,                      // List of genres
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of genres
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// CreateGenreHandler creates a genre; catalog management is restricted
func CreateGenreHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var req GenreRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		genre := domain.Genre{Name: req.Name, Slug: req.Slug} // Build the genre
		if err := db.Create(&genre).Error; err != nil {
			// Duplicate slug
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slug already exists"})
			return
		}
		// Genre names are shown inside cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.JSON(http.StatusCreated, genre) // Return the created genre
	}
}

// DeleteGenreHandler deletes a genre by slug, detaching it from titles
func DeleteGenreHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var genre domain.Genre // The genre being deleted
		if err := db.Where("slug = ?", c.Param("slug")).First(&genre).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
			return
		}
		// Drop join rows, then delete, in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			// Detach the genre from all titles
			if err := tx.Exec("DELETE FROM genre_to_titles WHERE genre_id = ?", genre.ID).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&genre).Error // Remove the genre
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"slug":  genre.Slug,  // Genre slug
				"error": err.Error(), // Error message
			}).Error("Failed to delete genre") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete genre"})
			return
		}
		// Cached title payloads embed the genre list
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.Status(http.StatusNoContent) // Return no content
	}
}
