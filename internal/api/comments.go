package api

import (
	"net/http" // HTTP status codes
	"time"     // Timestamp formatting

	"review_system/internal/domain"     // Importing domain models
	"review_system/internal/middleware" // Acting user helpers
	"review_system/internal/policy"     // Access policy decisions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateCommentRequest represents a comment creation request
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"` // Comment text must be provided
}

// UpdateCommentRequest represents a partial comment update
type UpdateCommentRequest struct {
	Text *string `json:"text"` // New text
}

// CommentResponse is the serialized representation of a comment
type CommentResponse struct {
	ID      uint      `json:"id"`       // Comment ID
	Author  string    `json:"author"`   // Author username
	Review  string    `json:"review"`   // Text of the commented review
	Text    string    `json:"text"`     // Comment text
	PubDate time.Time `json:"pub_date"` // Creation timestamp
}

// commentResponse serializes a comment; the author must be preloaded
func commentResponse(cm *domain.Comment, reviewText string) CommentResponse {
	return CommentResponse{
		ID:      cm.ID,              // Comment ID
		Author:  cm.Author.Username, // Author username
		Review:  reviewText,         // Commented review text
		Text:    cm.Text,            // Comment text
		PubDate: cm.CreatedAt,       // Creation timestamp
	}
}

// commentFromPath resolves the comment_id path parameter under its review; a
// comment on another review is not found.
func commentFromPath(c *gin.Context, db *gorm.DB, reviewID uint) (*domain.Comment, bool) {
	var comment domain.Comment // The referenced comment
	err := db.Preload("Author").
		Where("id = ? AND review_id = ?", c.Param("comment_id"), reviewID).
		First(&comment).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}
	return &comment, true
}

// ListCommentsHandler returns a review's comments, oldest first. The review
// must belong to the title in the path.
func ListCommentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := titleFromPath(c, db) // Resolve the title
		if !ok {
			return
		}
		review, ok := reviewFromPath(c, db, title.ID) // Resolve the review under it
		if !ok {
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		var total int64                         // Total comment count
		if err := db.Model(&domain.Comment{}).Where("review_id = ?", review.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count comments"})
			return
		}
		var comments []domain.Comment // Slice to hold comments
		// Oldest comments first
		if err := db.Preload("Author").Where("review_id = ?", review.ID).
			Order("created_at asc").Offset(offset).Limit(pageSize).
			Find(&comments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
			return
		}
		// Serialize the page
		resp := make([]CommentResponse, len(comments))
		for i := range comments {
			resp[i] = commentResponse(&comments[i], review.Text)
		}
		c.JSON(http.StatusOK, gin.H{
			"comments":    resp,                        // List of comments
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total comments
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// GetCommentHandler returns one comment under its review and title
func GetCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		title, ok := titleFromPath(c, db) // Resolve the title
		if !ok {
			return
		}
		review, ok := reviewFromPath(c, db, title.ID) // Resolve the review
		if !ok {
			return
		}
		comment, ok := commentFromPath(c, db, review.ID) // Resolve the comment
		if !ok {
			return
		}
		c.JSON(http.StatusOK, commentResponse(comment, review.Text)) // Return the comment
	}
}

// CreateCommentHandler posts a comment as the acting user on the review
// resolved from the path.
func CreateCommentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c) // The acting user
		title, ok := titleFromPath(c, db)  // Resolve the title
		if !ok {
			return
		}
		review, ok := reviewFromPath(c, db, title.ID) // Resolve the review under it
		if !ok {
			return
		}
		var req CreateCommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		comment := domain.Comment{
			AuthorID: actor.ID,  // Author is always the acting user
			ReviewID: review.ID, // Review resolved from the path
			Text:     req.Text,  // Comment text
		}
		if err := db.Create(&comment).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"review_id": review.ID,   // Review ID
				"error":     err.Error(), // Error message
			}).Error("Failed to create comment") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
			return
		}
		comment.Author = *actor // For the response serialization
		c.JSON(http.StatusCreated, commentResponse(&comment, review.Text)) // Return the created comment
	}
}

// UpdateCommentHandler edits a comment; authors edit their own, moderators
// and admins edit anyone's.
func UpdateCommentHandler(db *gorm.DB) gin.HandlerFunc {
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
		comment, ok := commentFromPath(c, db, review.ID) // Resolve the comment
		if !ok {
			return
		}
		// Check the access policy
		if !policy.CanModifyContent(actor, comment.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify this comment"})
			return
		}
		var req UpdateCommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply the update if anything changed
		if req.Text != nil {
			if err := db.Model(comment).Update("text", *req.Text).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
				return
			}
		}
		c.JSON(http.StatusOK, commentResponse(comment, review.Text)) // Return the updated comment
	}
}

// DeleteCommentHandler removes a comment; same policy as update
func DeleteCommentHandler(db *gorm.DB) gin.HandlerFunc {
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
		comment, ok := commentFromPath(c, db, review.ID) // Resolve the comment
		if !ok {
			return
		}
		// Check the access policy
		if !policy.CanModifyContent(actor, comment.AuthorID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to delete this comment"})
			return
		}
		if err := db.Delete(comment).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"comment_id": comment.ID,  // Comment ID
				"error":      err.Error(), // Error message
			}).Error("Failed to delete comment") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
			return
		}
		c.Status(http.StatusNoContent) // Return no content
	}
}
