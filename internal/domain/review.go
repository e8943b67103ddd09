package domain

import "time"

// Review Model
type Review struct {
	ID        uint      `gorm:"primaryKey"`                                           // Primary key
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_review_title_author,priority:2"` // Foreign key to User
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`                          // Review author
	TitleID   uint      `gorm:"not null;uniqueIndex:idx_review_title_author,priority:1"` // Foreign key to Title
	Text      string    `gorm:"type:text;not null"`                                   // Review text
	Score     int       `gorm:"not null"`                                             // Integer score 1-10
	CreatedAt time.Time `gorm:"index"`                                                // Timestamp of creation
	Comments  []Comment `gorm:"constraint:OnDelete:CASCADE"`                          // Comments on this review
}
