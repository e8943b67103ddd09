package api

import (
	"net/http"
	"testing"

	"review_system/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersIsAdminOnly(t *testing.T) {
	e := newTestEnv(t)
	_, userToken := e.user("plain", domain.RoleUser)
	_, modToken := e.user("mod", domain.RoleModerator)
	_, adminToken := e.user("boss", domain.RoleAdmin)

	w := e.do(http.MethodGet, "/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/v1/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Moderators do not manage the user directory either
	w = e.do(http.MethodGet, "/v1/users", modToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, "/v1/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListUsersSearchesByUsernameSubstring(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	e.user("alice", domain.RoleUser)
	e.user("malice", domain.RoleUser)
	e.user("bob", domain.RoleUser)

	w := e.do(http.MethodGet, "/v1/users?search=lice", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Users []domain.User `json:"users"`
		Total int64         `json:"total"`
	}
	decode(t, w, &resp)
	assert.EqualValues(t, 2, resp.Total)
	names := []string{resp.Users[0].Username, resp.Users[1].Username}
	assert.ElementsMatch(t, []string{"alice", "malice"}, names)
}

func TestAdminCreatesUser(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)

	w := e.do(http.MethodPost, "/v1/users", adminToken, gin.H{
		"username": "carol",
		"email":    "carol@x.com",
		"role":     domain.RoleModerator,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored domain.User
	require.NoError(t, e.db.Where("username = ?", "carol").First(&stored).Error)
	assert.Equal(t, domain.RoleModerator, stored.Role)

	// Unknown roles are rejected
	w = e.do(http.MethodPost, "/v1/users", adminToken, gin.H{
		"username": "dave", "email": "dave@x.com", "role": "king",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserByUsername(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	_, userToken := e.user("plain", domain.RoleUser)
	e.user("bob", domain.RoleUser)

	// Admin fetch by username
	w := e.do(http.MethodGet, "/v1/users/bob", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Non-admin may not fetch others
	w = e.do(http.MethodGet, "/v1/users/bob", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown username
	w = e.do(http.MethodGet, "/v1/users/ghost", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// "me" resolves to the acting user for anyone authenticated
	w = e.do(http.MethodGet, "/v1/users/me", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"plain"`)
}

func TestSelfUpdateIgnoresRole(t *testing.T) {
	e := newTestEnv(t)
	plain, userToken := e.user("plain", domain.RoleUser)

	w := e.do(http.MethodPatch, "/v1/users/me", userToken, gin.H{
		"bio":  "hello",
		"role": domain.RoleAdmin, // must not take effect through "me"
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stored domain.User
	require.NoError(t, e.db.First(&stored, plain.ID).Error)
	assert.Equal(t, "hello", stored.Bio)
	assert.Equal(t, domain.RoleUser, stored.Role)
}

func TestAdminUpdatesAnyField(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	bob, _ := e.user("bob", domain.RoleUser)

	w := e.do(http.MethodPatch, "/v1/users/bob", adminToken, gin.H{
		"first_name": "Bob",
		"role":       domain.RoleModerator,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stored domain.User
	require.NoError(t, e.db.First(&stored, bob.ID).Error)
	assert.Equal(t, "Bob", stored.FirstName)
	assert.Equal(t, domain.RoleModerator, stored.Role)
}

func TestDeleteMeIsNeverAllowed(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	_, userToken := e.user("plain", domain.RoleUser)

	// Rejected regardless of role
	w := e.do(http.MethodDelete, "/v1/users/me", userToken, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	w = e.do(http.MethodDelete, "/v1/users/me", adminToken, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAdminDeletesUserWithContent(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	bob, _ := e.user("bob", domain.RoleUser)
	title := e.title("Dune", 1965)
	review := e.review(bob, title, 8)
	e.comment(bob, review)

	w := e.do(http.MethodDelete, "/v1/users/bob", adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The user and their content are gone
	var users, reviews, comments int64
	e.db.Model(&domain.User{}).Where("username = ?", "bob").Count(&users)
	e.db.Model(&domain.Review{}).Where("author_id = ?", bob.ID).Count(&reviews)
	e.db.Model(&domain.Comment{}).Where("author_id = ?", bob.ID).Count(&comments)
	assert.Zero(t, users)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)

	// Deleting again is not found
	w = e.do(http.MethodDelete, "/v1/users/bob", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletingAuthorRefreshesTitleRating(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	bob, _ := e.user("bob", domain.RoleUser)
	title := e.title("Dune", 1965)
	e.review(bob, title, 8)

	// The title carries bob's rating
	w := e.do(http.MethodGet, "/v1/titles/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp TitleResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, 8, *resp.Rating)

	// Deleting the author cascades the review away, and a subsequent read
	// must see the recomputed rating, not a leftover one
	w = e.do(http.MethodDelete, "/v1/users/bob", adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodGet, "/v1/titles/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Nil(t, resp.Rating)
}
