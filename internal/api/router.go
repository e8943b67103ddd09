package api

import (
	"review_system/internal/mailer"     // Confirmation code delivery
	"review_system/internal/middleware" // Auth middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRoutes wires every v1 endpoint onto the router. Reads are public;
// writes sit behind JWT auth, with finer policy checks inside the handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, mail mailer.Mailer, jwtSecret string) {
	v1 := r.Group("/v1") // Everything is versioned under v1

	// Auth routes
	v1.POST("/auth/signup", SignupHandler(db, mail))    // Signup endpoint
	v1.POST("/auth/token", TokenHandler(db, jwtSecret)) // Code exchange endpoint

	// Public catalog and feedback reads
	v1.GET("/categories", ListCategoriesHandler(db))                                      // List categories
	v1.GET("/genres", ListGenresHandler(db))                                              // List genres
	v1.GET("/titles", ListTitlesHandler(db, rdb))                                         // List titles
	v1.GET("/titles/:title_id", GetTitleHandler(db, rdb))                                 // Title detail
	v1.GET("/titles/:title_id/reviews", ListReviewsHandler(db))                           // List reviews
	v1.GET("/titles/:title_id/reviews/:review_id", GetReviewHandler(db))                  // Review detail
	v1.GET("/titles/:title_id/reviews/:review_id/comments", ListCommentsHandler(db))      // List comments
	v1.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", GetCommentHandler(db)) // Comment detail

	// Authenticated routes (writes and the user directory)
	auth := v1.Group("")
	auth.Use(middleware.JWTAuthMiddleware(jwtSecret), middleware.CurrentUserMiddleware(db))

	// User directory; listing and creating are admin-only outright
	auth.GET("/users", middleware.AdminOnlyMiddleware(), ListUsersHandler(db))    // List users
	auth.POST("/users", middleware.AdminOnlyMiddleware(), CreateUserHandler(db))  // Create user
	auth.GET("/users/:username", GetUserHandler(db))                              // User detail, "me" aware
	auth.PATCH("/users/:username", UpdateUserHandler(db))                         // User update, "me" aware
	auth.DELETE("/users/:username", DeleteUserHandler(db, rdb))                   // User delete, "me" forbidden

	// Catalog writes, policy-checked in the handlers
	auth.POST("/categories", CreateCategoryHandler(db, rdb))         // Create category
	auth.DELETE("/categories/:slug", DeleteCategoryHandler(db, rdb)) // Delete category by slug
	auth.POST("/genres", CreateGenreHandler(db, rdb))                // Create genre
	auth.DELETE("/genres/:slug", DeleteGenreHandler(db, rdb))        // Delete genre by slug
	auth.POST("/titles", CreateTitleHandler(db, rdb))                // Create title
	auth.PATCH("/titles/:title_id", UpdateTitleHandler(db, rdb))     // Update title
	auth.DELETE("/titles/:title_id", DeleteTitleHandler(db, rdb))    // Delete title

	// Feedback writes
	auth.POST("/titles/:title_id/reviews", CreateReviewHandler(db, rdb))                   // Create review
	auth.PATCH("/titles/:title_id/reviews/:review_id", UpdateReviewHandler(db, rdb))       // Update review
	auth.DELETE("/titles/:title_id/reviews/:review_id", DeleteReviewHandler(db, rdb))      // Delete review
	auth.POST("/titles/:title_id/reviews/:review_id/comments", CreateCommentHandler(db))   // Create comment
	auth.PATCH("/titles/:title_id/reviews/:review_id/comments/:comment_id", UpdateCommentHandler(db))  // Update comment
	auth.DELETE("/titles/:title_id/reviews/:review_id/comments/:comment_id", DeleteCommentHandler(db)) // Delete comment
}
