package domain

// Category Model
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`                 // Primary key
	Name string `gorm:"size:200;not null" json:"name"`       // Display name
	Slug string `gorm:"size:50;unique;not null" json:"slug"` // Unique URL identifier
}
