// Package policy holds the access decisions as pure functions over the acting
// user, so the rules can be tested without a router or a database.
package policy

import "review_system/internal/domain"

// CanModifyContent reports whether the actor may update or delete a review or
// comment owned by authorID. Authors manage their own content; moderators and
// admins manage anyone's.
func CanModifyContent(actor *domain.User, authorID uint) bool {
	if actor == nil {
		return false
	}
	if actor.ID == authorID {
		return true
	}
	return actor.IsModerator() || actor.IsAdmin()
}

// CanManageCatalog reports whether the actor may create, update or delete
// categories, genres and titles. Reserved for admins and superusers.
func CanManageCatalog(actor *domain.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsSuperuser
}

// CanManageUsers reports whether the actor may list, create, update or delete
// arbitrary users. Same set as catalog management.
func CanManageUsers(actor *domain.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsSuperuser
}
