package domain

import "regexp"

// Roles a user can hold
const (
	RoleUser      = "user"      // Default role
	RoleModerator = "moderator" // Can edit or delete any review or comment
	RoleAdmin     = "admin"     // Full access, including the user directory
)

// usernameRe restricts usernames to word characters plus . @ + -
var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// User Model
type User struct {
	ID               uint      `gorm:"primaryKey" json:"-"`                      // Primary key
	Username         string    `gorm:"size:150;unique;not null" json:"username"` // Unique username
	Email            string    `gorm:"size:254;unique;not null" json:"email"`    // Unique email address
	FirstName        string    `gorm:"size:150" json:"first_name"`               // First name
	LastName         string    `gorm:"size:150" json:"last_name"`                // Last name
	Bio              string    `gorm:"type:text" json:"bio"`                     // Free-text bio
	Role             string    `gorm:"size:25;default:user" json:"role"`         // Role: user, moderator or admin
	IsSuperuser      bool      `gorm:"default:false" json:"-"`                   // Superuser flag, grants catalog management
	ConfirmationCode string    `gorm:"size:60" json:"-"`                         // bcrypt hash of the emailed confirmation code
	Reviews          []Review  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"` // Reviews written by this user
	Comments         []Comment `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"` // Comments written by this user
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator reports whether the user holds the moderator role
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// ValidUsername reports whether a username is acceptable: it must match the
// allowed character set, and "me" is reserved for the self alias in routes.
func ValidUsername(username string) bool {
	if username == "me" {
		return false
	}
	return usernameRe.MatchString(username)
}

// ValidRole reports whether a role string is one of the known roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleModerator || role == RoleAdmin
}
