package api

import (
	"database/sql" // Nullable scan targets
	"strconv"      // String conversion

	"review_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// pageParams reads page and page_size query parameters with the usual
// defaults and limits, returning the offset to apply.
func pageParams(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page
	pageSize = 20 // Default page size
	// If page exists in query
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// If page_size exists in query
	if ps := c.Query("page_size"); ps != "" {
		// Convert page_size to integer
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize, (page - 1) * pageSize
}

// totalPages computes the page count for a total and page size
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

// titleRating computes the rounded mean review score for a title, or nil when
// the title has no reviews. Recomputed from all reviews on every call; the
// mean is rounded half-up to the nearest integer.
func titleRating(db *gorm.DB, titleID uint) (*int, error) {
	var avg sql.NullFloat64 // Aggregate result, null with no rows
	err := db.Model(&domain.Review{}).
		Where("title_id = ?", titleID).
		Select("AVG(score)").
		Scan(&avg).Error
	if err != nil {
		return nil, err // Return error if the aggregate fails
	}
	if !avg.Valid {
		return nil, nil // No reviews yet
	}
	rating := int(avg.Float64 + 0.5) // Round half-up; scores are positive
	return &rating, nil
}
