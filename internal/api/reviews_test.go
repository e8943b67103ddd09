package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"review_system/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReviewRequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	e.title("Dune", 1965)

	w := e.do(http.MethodPost, "/v1/titles/1/reviews", "", gin.H{"text": "great", "score": 9})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReviewOncePerAuthor(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.user("alice", domain.RoleUser)
	_, bobToken := e.user("bob", domain.RoleUser)
	e.title("Dune", 1965)

	w := e.do(http.MethodPost, "/v1/titles/1/reviews", aliceToken, gin.H{"text": "great", "score": 9})
	require.Equal(t, http.StatusCreated, w.Code)
	var created ReviewResponse
	decode(t, w, &created)
	assert.Equal(t, "alice", created.Author)
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, 9, created.Score)

	// A second review by the same author on the same title is rejected
	w = e.do(http.MethodPost, "/v1/titles/1/reviews", aliceToken, gin.H{"text": "again", "score": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already reviewed")

	// A different author may still review it
	w = e.do(http.MethodPost, "/v1/titles/1/reviews", bobToken, gin.H{"text": "fine", "score": 7})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReviewValidatesScore(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.user("alice", domain.RoleUser)
	e.title("Dune", 1965)

	for _, score := range []int{0, 11, -3} {
		w := e.do(http.MethodPost, "/v1/titles/1/reviews", aliceToken, gin.H{"text": "x", "score": score})
		assert.Equal(t, http.StatusBadRequest, w.Code, "score %d", score)
	}
}

func TestCreateReviewStorageFailureIsNotADuplicate(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.user("alice", domain.RoleUser)
	e.title("Dune", 1965)

	// A broken store must surface as a server error, not as the
	// already-reviewed validation answer
	require.NoError(t, e.db.Exec("DROP TABLE reviews").Error)
	w := e.do(http.MethodPost, "/v1/titles/1/reviews", aliceToken, gin.H{"text": "x", "score": 5})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "already reviewed")
}

func TestCreateReviewOnUnknownTitle(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.user("alice", domain.RoleUser)

	w := e.do(http.MethodPost, "/v1/titles/999/reviews", aliceToken, gin.H{"text": "x", "score": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReviewsOldestFirst(t *testing.T) {
	e := newTestEnv(t)
	alice, _ := e.user("alice", domain.RoleUser)
	bob, _ := e.user("bob", domain.RoleUser)
	title := e.title("Dune", 1965)

	// Distinct timestamps, inserted newest first
	newer := domain.Review{AuthorID: bob.ID, TitleID: title.ID, Text: "later", Score: 7, CreatedAt: time.Now()}
	older := domain.Review{AuthorID: alice.ID, TitleID: title.ID, Text: "earlier", Score: 9, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, e.db.Create(&newer).Error)
	require.NoError(t, e.db.Create(&older).Error)

	w := e.do(http.MethodGet, "/v1/titles/1/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Reviews []ReviewResponse `json:"reviews"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Reviews, 2)
	assert.Equal(t, "earlier", resp.Reviews[0].Text)
	assert.Equal(t, "later", resp.Reviews[1].Text)
}

func TestReviewPathMismatchIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	alice, _ := e.user("alice", domain.RoleUser)
	dune := e.title("Dune", 1965)
	e.title("Solaris", 1961)
	review := e.review(alice, dune, 9)

	// The review exists, but not under Solaris
	w := e.do(http.MethodGet, fmt.Sprintf("/v1/titles/2/reviews/%d", review.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Under its own title it resolves
	w = e.do(http.MethodGet, fmt.Sprintf("/v1/titles/1/reviews/%d", review.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReviewModificationPolicy(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceToken := e.user("alice", domain.RoleUser)
	_, bobToken := e.user("bob", domain.RoleUser)
	_, modToken := e.user("mod", domain.RoleModerator)
	title := e.title("Dune", 1965)
	review := e.review(alice, title, 9)
	path := fmt.Sprintf("/v1/titles/1/reviews/%d", review.ID)

	// Another plain user may not edit it
	w := e.do(http.MethodPatch, path, bobToken, gin.H{"text": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author may
	w = e.do(http.MethodPatch, path, aliceToken, gin.H{"score": 10})
	require.Equal(t, http.StatusOK, w.Code)
	var stored domain.Review
	require.NoError(t, e.db.First(&stored, review.ID).Error)
	assert.Equal(t, 10, stored.Score)

	// Score bounds hold on update too
	w = e.do(http.MethodPatch, path, aliceToken, gin.H{"score": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A moderator may edit anyone's review
	w = e.do(http.MethodPatch, path, modToken, gin.H{"text": "moderated"})
	assert.Equal(t, http.StatusOK, w.Code)

	// A plain user may not delete it either
	w = e.do(http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author deletes it, taking its comments along
	e.comment(alice, review)
	w = e.do(http.MethodDelete, path, aliceToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	var comments int64
	e.db.Model(&domain.Comment{}).Where("review_id = ?", review.ID).Count(&comments)
	assert.Zero(t, comments)
}

func TestCommentPathMismatchIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	alice, _ := e.user("alice", domain.RoleUser)
	bob, _ := e.user("bob", domain.RoleUser)
	dune := e.title("Dune", 1965)
	solaris := e.title("Solaris", 1961)
	duneReview := e.review(alice, dune, 9)
	solarisReview := e.review(bob, solaris, 6)

	// The review in the path belongs to another title
	w := e.do(http.MethodGet, fmt.Sprintf("/v1/titles/1/reviews/%d/comments", solarisReview.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A matched path lists fine
	w = e.do(http.MethodGet, fmt.Sprintf("/v1/titles/1/reviews/%d/comments", duneReview.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentLifecycle(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceToken := e.user("alice", domain.RoleUser)
	_, bobToken := e.user("bob", domain.RoleUser)
	_, modToken := e.user("mod", domain.RoleModerator)
	title := e.title("Dune", 1965)
	review := e.review(alice, title, 9)
	base := fmt.Sprintf("/v1/titles/1/reviews/%d/comments", review.ID)

	// Creating needs auth
	w := e.do(http.MethodPost, base, "", gin.H{"text": "nice"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The acting user becomes the author
	w = e.do(http.MethodPost, base, bobToken, gin.H{"text": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created CommentResponse
	decode(t, w, &created)
	assert.Equal(t, "bob", created.Author)

	path := fmt.Sprintf("%s/%d", base, created.ID)

	// Only the author, moderators and admins may edit
	w = e.do(http.MethodPatch, path, aliceToken, gin.H{"text": "edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodPatch, path, bobToken, gin.H{"text": "edited"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPatch, path, modToken, gin.H{"text": "moderated"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Same policy on delete
	w = e.do(http.MethodDelete, path, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodDelete, path, modToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone afterwards
	w = e.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
