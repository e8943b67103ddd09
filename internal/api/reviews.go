package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Timestamp formatting

	"review_system/internal/domain"     // Importing domain models
	"review_system/internal/middleware" // Acting user helpers
	"review_system/internal/policy"     // Access policy decisions
	"review_system/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateReviewRequest represents a review creation request
type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`                   // Review text must be provided
	Score *int   `json:"score" binding:"required,gte=1,lte=10"`     // Integer score 1-10
}

// UpdateReviewRequest represents a partial review update
type UpdateReviewRequest struct {
	Text  *string `json:"text"`  // New text
	Score *int    `json:"score"` // New score
}

// ReviewResponse is the serialized representation of a review
type ReviewResponse struct {
	ID      uint      `json:"id"`       // Review ID
	Author  string    `json:"author"`   // Author username
	Title   string    `json:"title"`    // Reviewed title name
	Text    string    `json:"text"`     // Review text
	Score   int       `json:"score"`    // Score 1-10
	PubDate time.Time `json:"pub_date"` // Creation timestamp
}

// reviewResponse serializes a review; the author must be preloaded
func reviewResponse(r *domain.Review, titleName string) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,              // Review ID
		Author:  r.Author.Username, // Author username
		Title:   titleName,         // Reviewed title name
		Text:    r.Text,            // Review text
		Score:   r.Score,           // Score
		PubDate: r.CreatedAt,       // Creation timestamp
	}
}

// titleFromPath resolves the title_id path parameter, answering 404 itself
// when the title does not exist.
func titleFromPath(c *gin.Context, db *gorm.DB) (*domain.Title, bool) {
	var title domain.Title // The referenced title
	if err := db.First(&title, "id = ?", c.Param("title_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
		return nil, false
	}
	return &title, true
}

// reviewFromPath resolves the review_id path parameter under its title; a
// review that exists but belongs to another title is not found.
func reviewFromPath(c *gin.Context, db *gorm.DB, titleID uint) (*domain.Review, bool) {
	var review domain.Review // The referenced review
	err := db.Preload("Author").
		Where("id = ? AND title_id = ?", c.Param("review_id"), titleID).
		First(&review).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	return &review, true
}

// ListReviewsHandler returns a title's reviews, oldest first
func ListReviewsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := titleFromPath(c, db) // Resolve the title
		if !ok {
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		var total int64                         // Total review count
		if err := db.Model(&domain.Review{}).Where("title_id = ?", title.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count reviews"})
			return
		}
		var reviews []domain.Review // Slice to hold reviews
		// Oldest reviews first
		if err := db.Preload("Author").Where("title_id = ?", title.ID).
			Order("created_at asc").Offset(offset).Limit(pageSize).
			Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		// Serialize the page
		resp := make([]ReviewResponse, len(reviews))
		for i := range reviews {
			resp[i] = reviewResponse(&reviews[i], title.Name)
		}
		c.JSON(http.StatusOK, gin.H{
			"reviews":     resp,                        // List of reviews
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total reviews
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// GetReviewHandler returns one review under its title
func GetReviewHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := titleFromPath(c, db) // Resolve the title
		if !ok {
			return
		}
		review, ok := reviewFromPath(c, db, title.ID) // Resolve the review
		if !ok {
			return
		}
		c.JSON(http.StatusOK, reviewResponse(review, title.Name)) // Return the review
	}
}

// CreateReviewHandler posts a review as the acting user; a second review on
// the same title by the same author is rejected.
func CreateReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		title, ok := titleFromPath(c, db)  // Resolve the title
		if !ok {
			return
		}
		var req CreateReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Malformed body or score outside 1-10
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		review := domain.Review{
			AuthorID: actor.ID,   // Author is always the acting user
			TitleID:  title.ID,   // Title resolved from the path
			Text:     req.Text,   // Review text
			Score:    *req.Score, // Score 1-10
		}
		// The duplicate check and the insert share one transaction; the
		// unique (title, author) index backs the check up under races.
		err := db.Transaction(func(tx *gorm.DB) error {
			var count int64 // Existing reviews by this author on this title
			if err := tx.Model(&domain.Review{}).
				Where("title_id = ? AND author_id = ?", title.ID, actor.ID).
				Count(&count).Error; err != nil {
				return err // Return error to rollback
			}
			if count > 0 {
				return gorm.ErrDuplicatedKey // Already reviewed
			}
			return tx.Create(&review).Error
		})
		// Handle transaction result
		if err != nil {
			// One review per author per title; other failures are ours
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this title"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"title_id": title.ID,       // Title ID
				"author":   actor.Username, // Review author
				"error":    err.Error(),    // Error message
			}).Error("Failed to create review") // Log the storage failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		// Log the review
		logrus.WithFields(logrus.Fields{
			"title_id": title.ID,       // Title ID
			"author":   actor.Username, // Review author
			"score":    review.Score,   // Score
		}).Info("Review created")
		review.Author = *actor // For the response serialization
		// The title's rating changed; drop cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.JSON(http.StatusCreated, reviewResponse(&review, title.Name)) // Return the created review
	}
}

// UpdateReviewHandler edits a review; authors edit their own, moderators and
// admins edit anyone's.
func UpdateReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		title, ok := titleFromPath(c, db)  // Resolve the title
		if !ok {
			return
		}
		review, ok := reviewFromPath(c, db, title.ID) // Resolve the review
		if !ok {
			return
		}
		// Check the access policy
		if !policy.CanModifyContent(actor, review.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify this review"})
			return
		}
		var req UpdateReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// A changed score must stay within 1-10
		if req.Score != nil && (*req.Score < 1 || *req.Score > 10) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Score must be between 1 and 10"})
			return
		}
		updates := map[string]any{} // Changed columns only
		if req.Text != nil {
			updates["text"] = *req.Text
		}
		if req.Score != nil {
			updates["score"] = *req.Score
		}
		// Apply the update if anything changed
		if len(updates) > 0 {
			if err := db.Model(review).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
				return
			}
		}
		// The rating may have changed; drop cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.JSON(http.StatusOK, reviewResponse(review, title.Name)) // Return the updated review
	}
}

// DeleteReviewHandler removes a review and its comments; same policy as update
func DeleteReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		title, ok := titleFromPath(c, db)  // Resolve the title
		if !ok {
			return
		}
		review, ok := reviewFromPath(c, db, title.ID) // Resolve the review
		if !ok {
			return
		}
		// Check the access policy
		if !policy.CanModifyContent(actor, review.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to delete this review"})
			return
		}
		// Cascade comments in the same transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			// Remove the review's comments first
			if err := tx.Where("review_id = ?", review.ID).Delete(&domain.Comment{}).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(review).Error // Remove the review
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"review_id": review.ID,   // Review ID
				"error":     err.Error(), // Error message
			}).Error("Failed to delete review") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		// The rating changed; drop cached title payloads
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "titles:")
		c.Status(http.StatusNoContent) // Return no content
	}
}
