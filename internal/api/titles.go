package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations and current year

	"review_system/internal/domain"     // Importing domain models
	"review_system/internal/middleware" // Acting user helpers
	"review_system/internal/policy"     // Access policy decisions
	"review_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// titleCacheTTL bounds staleness of cached title payloads
const titleCacheTTL = 60 * time.Second

// CreateTitleRequest represents a title creation request
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required"` // Name must be provided
	Year        *int     `json:"year" binding:"required"` // Release year must be provided
	Description *string  `json:"description"`             // Optional description
	Category    string   `json:"category"`                // Optional category slug
	Genre       []string `json:"genre"`                   // Genre slugs
}

// UpdateTitleRequest represents a partial title update; nil fields are untouched
type UpdateTitleRequest struct {
	Name        *string   `json:"name"`        // New name
	Year        *int      `json:"year"`        // New release year
	Description *string   `json:"description"` // New description
	Category    *string   `json:"category"`    // New category slug, empty clears it
	Genre       *[]string `json:"genre"`       // Replacement genre slugs
}

// TitleResponse is the nested representation of a title
type TitleResponse struct {
	ID          uint             `json:"id"`          // Title ID
	Name        string           `json:"name"`        // Work name
	Year        int              `json:"year"`        // Release year
	Description *string          `json:"description"` // Description, null when unset
	Genre       []domain.Genre   `json:"genre"`       // Associated genres
	Category    *domain.Category `json:"category"`    // Category, null when unset
	Rating      *int             `json:"rating"`      // Rounded mean score, null without reviews
}

// titleResponse builds the nested representation including the computed rating
func titleResponse(db *gorm.DB, t *domain.Title) (TitleResponse, error) {
	rating, err := titleRating(db, t.ID) // Compute the mean score
	if err != nil {
		return TitleResponse{}, err // Return error if the aggregate fails
	}
	genres := t.Genres // Never serialize genres as null
	if genres == nil {
		genres = []domain.Genre{}
	}
	return TitleResponse{
		ID:          t.ID,          // Title ID
		Name:        t.Name,        // Work name
		Year:        t.Year,        // Release year
		Description: t.Description, // Description
		Genre:       genres,        // Associated genres
		Category:    t.Category,    // Category
		Rating:      rating,        // Computed rating
	}, nil
}

// resolveCategory looks up a category by slug for a title write
func resolveCategory(db *gorm.DB, slug string) (*domain.Category, error) {
	var category domain.Category // The referenced category
	if err := db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err // Unknown slug
	}
	return &category, nil
}

// resolveGenres looks up genres by slug for a title write; every slug must
// already exist or the write fails validation. Repeated slugs count once.
func resolveGenres(db *gorm.DB, slugs []string) ([]domain.Genre, error) {
	genres := []domain.Genre{} // Resolved genres
	seen := map[string]bool{}  // De-duplicate the requested slugs
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}
	if len(unique) == 0 {
		return genres, nil // Nothing to resolve
	}
	if err := db.Where("slug IN ?", unique).Find(&genres).Error; err != nil {
		return nil, err // Lookup failure
	}
	// Every requested slug must resolve
	if len(genres) != len(unique) {
		return nil, gorm.ErrRecordNotFound
	}
	return genres, nil
}

// validYear reports whether a release year is not in the future
func validYear(year int) bool {
	return year <= time.Now().Year()
}

// ListTitlesHandler returns titles with nested category, genres and rating,
// filterable by category slug, genre slug, name substring and year.
func ListTitlesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		// Cache key embeds the whole query string
		cacheKey := "titles:list:" + c.Request.URL.RawQuery
		var cached struct {
			Titles     []TitleResponse `json:"titles"`      // List of titles
			Page       int             `json:"page"`        // Current page
			PageSize   int             `json:"page_size"`   // Page size
			Total      int64           `json:"total"`       // Total titles
			TotalPages int             `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"titles":      cached.Titles,     // Cached titles
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total titles
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		query := db.Model(&domain.Title{})      // Start building the query
		// Filter by category slug
		if slug := c.Query("category"); slug != "" {
			query = query.Joins("JOIN categories ON categories.id = titles.category_id").
				Where("categories.slug = ?", slug)
		}
		// Filter by genre slug through the join table
		if slug := c.Query("genre"); slug != "" {
			query = query.Joins("JOIN genre_to_titles ON genre_to_titles.title_id = titles.id").
				Joins("JOIN genres ON genres.id = genre_to_titles.genre_id").
				Where("genres.slug = ?", slug)
		}
		// Filter by name substring
		if name := c.Query("name"); name != "" {
			query = query.Where("titles.name LIKE ?", "%"+name+"%")
		}
		// Filter by exact release year
		if year := c.Query("year"); year != "" {
			if v, err := strconv.Atoi(year); err == nil {
				query = query.Where("titles.year = ?", v)
			}
		}
		var total int64 // Total title count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count titles"})
			return
		}
		var titles []domain.Title // Slice to hold titles
		// Newest works first
		if err := query.Preload("Category").Preload("Genres").
			Order("titles.year desc").Offset(offset).Limit(pageSize).
			Find(&titles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch titles"})
			return
		}
		// Build nested responses with computed ratings
		resp := make([]TitleResponse, len(titles))
		for i := range titles {
			tr, err := titleResponse(db, &titles[i])
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rating"})
				return
			}
			resp[i] = tr
		}
		respData := gin.H{
			"titles":      resp,                        // List of titles
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total titles
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Indicate response is not from cache
		}
		// Cache the result
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, titleCacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// GetTitleHandler returns one title with nested relations and rating
func GetTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		titleID := c.Param("title_id")                   // Title ID from the path
		ctx := context.Background()                      // Context for Redis operations
		cacheKey := "titles:detail:" + titleID           // Cache key for this title
		var cached TitleResponse                         // Cached representation
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try the cache first
		if err == nil && found {
			c.JSON(http.StatusOK, cached) // Return cached title
			return
		}
		var title domain.Title // Fetch the title with relations
		if err := db.Preload("Category").Preload("Genres").First(&title, "id = ?", titleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		// Build the nested response
		resp, err := titleResponse(db, &title)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rating"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, titleCacheTTL) // Cache the title
		c.JSON(http.StatusOK, resp)                                 // Return the title
	}
}

// CreateTitleHandler creates a title with slug-referenced relations
func CreateTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var req CreateTitleRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// A release year in the future is rejected
		if !validYear(*req.Year) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Year must not exceed the current year"})
			return
		}
		// Resolve the category slug, if any
		var category *domain.Category
		if req.Category != "" {
			resolved, err := resolveCategory(db, req.Category)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category slug"})
				return
			}
			category = resolved
		}
		// Resolve the genre slugs; all must exist
		genres, err := resolveGenres(db, req.Genre)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown genre slug"})
			return
		}
		// Build the title
		title := domain.Title{
			Name:        req.Name,        // Work name
			Year:        *req.Year,       // Release year
			Description: req.Description, // Description
			Genres:      genres,          // Associated genres
		}
		if category != nil {
			title.CategoryID = &category.ID // Attach the category
			title.Category = category
		}
		// One transaction covers the title row and its genre links
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&title).Error
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Title name
				"error": err.Error(), // Error message
			}).Error("Failed to create title") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create title"})
			return
		}
		// Build the nested response
		resp, err := titleResponse(db, &title)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rating"})
			return
		}
		// Invalidate cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.JSON(http.StatusCreated, resp) // Return the created title
	}
}

// UpdateTitleHandler applies a partial update to a title
func UpdateTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var title domain.Title // The title being updated
		if err := db.Preload("Category").Preload("Genres").First(&title, "id = ?", c.Param("title_id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		var req UpdateTitleRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// A changed year must still not be in the future
		if req.Year != nil && !validYear(*req.Year) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Year must not exceed the current year"})
			return
		}
		updates := map[string]any{} // Changed columns only
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Year != nil {
			updates["year"] = *req.Year
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		// Re-slug the category: a value reslugs, empty clears
		var newCategory *domain.Category
		if req.Category != nil {
			if *req.Category == "" {
				updates["category_id"] = nil
			} else {
				resolved, err := resolveCategory(db, *req.Category)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category slug"})
					return
				}
				newCategory = resolved
				updates["category_id"] = resolved.ID
			}
		}
		// Re-slug the genre set; all must exist
		var newGenres []domain.Genre
		if req.Genre != nil {
			resolved, err := resolveGenres(db, *req.Genre)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown genre slug"})
				return
			}
			newGenres = resolved
		}
		// Apply columns and genre links in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			if len(updates) > 0 {
				if err := tx.Model(&title).Updates(updates).Error; err != nil {
					return err // Return error to rollback
				}
			}
			if req.Genre != nil {
				// Replace the genre association with the resolved set
				if err := tx.Model(&title).Association("Genres").Replace(newGenres); err != nil {
					return err // Return error to rollback
				}
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"title_id": title.ID,    // Title ID
				"error":    err.Error(), // Error message
			}).Error("Failed to update title") // Log update failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update title"})
			return
		}
		// Refresh nested fields for the response
		if req.Genre != nil {
			title.Genres = newGenres
		}
		if req.Category != nil {
			title.Category = newCategory // nil when cleared
		}
		resp, err := titleResponse(db, &title)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rating"})
			return
		}
		// Invalidate cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.JSON(http.StatusOK, resp) // Return the updated title
	}
}

// DeleteTitleHandler removes a title and cascades to its reviews and comments
func DeleteTitleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only admins and superusers manage the catalog
		if !policy.CanManageCatalog(middleware.CurrentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		var title domain.Title // The title being deleted
		if err := db.First(&title, "id = ?", c.Param("title_id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
			return
		}
		// Cascade comments, reviews and genre links in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			// Remove comments on the title's reviews
			if err := tx.Where("review_id IN (?)",
				tx.Model(&domain.Review{}).Select("id").Where("title_id = ?", title.ID),
			).Delete(&domain.Comment{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the reviews themselves
			if err := tx.Where("title_id = ?", title.ID).Delete(&domain.Review{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Drop genre links
			if err := tx.Exec("DELETE FROM genre_to_titles WHERE title_id = ?", title.ID).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&title).Error // Finally remove the title
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"title_id": title.ID,    // Title ID
				"error":    err.Error(), // Error message
			}).Error("Failed to delete title") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete title"})
			return
		}
		// Invalidate cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.Status(http.StatusNoContent) // Return no content
	}
}
