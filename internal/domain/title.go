package domain

// Title Model
type Title struct {
	ID          uint      `gorm:"primaryKey"`                                                 // Primary key
	Name        string    `gorm:"size:256;index;not null"`                                    // Work name
	Year        int       `gorm:"not null"`                                                   // Release year, never in the future
	Description *string   `gorm:"type:text"`                                                  // Optional description
	CategoryID  *uint     // Foreign key to Category, nullable
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`              // Optional category
	Genres      []Genre   `gorm:"many2many:genre_to_titles;constraint:OnDelete:CASCADE"`      // Associated genres
	Reviews     []Review  `gorm:"constraint:OnDelete:CASCADE"`                                // Reviews of this title
}
