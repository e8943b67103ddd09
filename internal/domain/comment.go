package domain

import "time"

// Comment Model
type Comment struct {
	ID        uint      `gorm:"primaryKey"`                  // Primary key
	AuthorID  uint      `gorm:"not null"`                    // Foreign key to User
	Author    User      `gorm:"constraint:OnDelete:CASCADE"` // Comment author
	ReviewID  uint      `gorm:"not null"`                    // Foreign key to Review
	Text      string    `gorm:"type:text;not null"`          // Comment text
	CreatedAt time.Time `gorm:"index"`                       // Timestamp of creation
}
