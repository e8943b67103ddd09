package api

import (
	"net/http"
	"testing"
	"time"

	"review_system/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTitleValidatesReferences(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	e.category("Books", "books")
	e.genre("Sci-Fi", "sci-fi")

	// Unknown category slug
	w := e.do(http.MethodPost, "/v1/titles", adminToken, gin.H{
		"name": "Dune", "year": 1965, "category": "films",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown genre slug, even mixed with a known one
	w = e.do(http.MethodPost, "/v1/titles", adminToken, gin.H{
		"name": "Dune", "year": 1965, "genre": []string{"sci-fi", "fantasy"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A year in the future
	w = e.do(http.MethodPost, "/v1/titles", adminToken, gin.H{
		"name": "Dune", "year": time.Now().Year() + 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A repeated genre slug counts once rather than failing resolution
	w = e.do(http.MethodPost, "/v1/titles", adminToken, gin.H{
		"name": "Solaris", "year": 1961, "genre": []string{"sci-fi", "sci-fi"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var deduped TitleResponse
	decode(t, w, &deduped)
	require.Len(t, deduped.Genre, 1)
	assert.Equal(t, "sci-fi", deduped.Genre[0].Slug)

	// All references valid
	w = e.do(http.MethodPost, "/v1/titles", adminToken, gin.H{
		"name": "Dune", "year": 1965, "category": "books", "genre": []string{"sci-fi"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created TitleResponse
	decode(t, w, &created)
	require.NotNil(t, created.Category)
	assert.Equal(t, "books", created.Category.Slug)
	require.Len(t, created.Genre, 1)
	assert.Equal(t, "sci-fi", created.Genre[0].Slug)
	assert.Nil(t, created.Rating)
}

func TestTitleWritesRequireCatalogAccess(t *testing.T) {
	e := newTestEnv(t)
	_, userToken := e.user("plain", domain.RoleUser)

	w := e.do(http.MethodPost, "/v1/titles", userToken, gin.H{"name": "Dune", "year": 1965})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetTitleIncludesComputedRating(t *testing.T) {
	e := newTestEnv(t)
	alice, _ := e.user("alice", domain.RoleUser)
	bob, _ := e.user("bob", domain.RoleUser)
	title := e.title("Dune", 1965)

	// No reviews: rating is null
	w := e.do(http.MethodGet, "/v1/titles/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp TitleResponse
	decode(t, w, &resp)
	assert.Nil(t, resp.Rating)

	// 8 and 9 average to 8.5, rounded half-up to 9
	e.review(alice, title, 8)
	e.review(bob, title, 9)
	w = e.do(http.MethodGet, "/v1/titles/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, 9, *resp.Rating)

	// Unknown title
	w = e.do(http.MethodGet, "/v1/titles/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTitlesFiltersCombine(t *testing.T) {
	e := newTestEnv(t)
	books := e.category("Books", "books")
	scifi := e.genre("Sci-Fi", "sci-fi")

	dune := e.title("Dune", 1965)
	require.NoError(t, e.db.Model(dune).Update("category_id", books.ID).Error)
	require.NoError(t, e.db.Model(dune).Association("Genres").Append(scifi))
	e.title("Solaris", 1961)
	other := e.title("Dune Messiah", 1969)
	require.NoError(t, e.db.Model(other).Update("category_id", books.ID).Error)

	var resp struct {
		Titles []TitleResponse `json:"titles"`
		Total  int64           `json:"total"`
	}

	// Category filter
	w := e.do(http.MethodGet, "/v1/titles?category=books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.EqualValues(t, 2, resp.Total)

	// Genre filter
	w = e.do(http.MethodGet, "/v1/titles?genre=sci-fi", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.EqualValues(t, 1, resp.Total)
	assert.Equal(t, "Dune", resp.Titles[0].Name)

	// Name substring combined with category and year
	w = e.do(http.MethodGet, "/v1/titles?category=books&name=Dune&year=1969", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.EqualValues(t, 1, resp.Total)
	assert.Equal(t, "Dune Messiah", resp.Titles[0].Name)
}

func TestListTitlesOrdersByYearDescending(t *testing.T) {
	e := newTestEnv(t)
	e.title("Oldest", 1950)
	e.title("Newest", 1990)
	e.title("Middle", 1970)

	w := e.do(http.MethodGet, "/v1/titles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Titles []TitleResponse `json:"titles"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Titles, 3)
	assert.Equal(t, []int{1990, 1970, 1950}, []int{resp.Titles[0].Year, resp.Titles[1].Year, resp.Titles[2].Year})
}

func TestUpdateTitleReslugsRelations(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	e.category("Books", "books")
	e.category("Films", "films")
	e.genre("Sci-Fi", "sci-fi")
	e.genre("Drama", "drama")

	w := e.do(http.MethodPost, "/v1/titles", adminToken, gin.H{
		"name": "Dune", "year": 1965, "category": "books", "genre": []string{"sci-fi"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created TitleResponse
	decode(t, w, &created)

	// Partial update: move category and replace the genre set
	w = e.do(http.MethodPatch, "/v1/titles/1", adminToken, gin.H{
		"category": "films", "genre": []string{"drama"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated TitleResponse
	decode(t, w, &updated)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "films", updated.Category.Slug)
	require.Len(t, updated.Genre, 1)
	assert.Equal(t, "drama", updated.Genre[0].Slug)
	assert.Equal(t, "Dune", updated.Name) // untouched field survives

	// Future year is still rejected on update
	w = e.do(http.MethodPatch, "/v1/titles/1", adminToken, gin.H{"year": time.Now().Year() + 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTitleCascades(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.user("boss", domain.RoleAdmin)
	alice, _ := e.user("alice", domain.RoleUser)
	title := e.title("Dune", 1965)
	review := e.review(alice, title, 9)
	e.comment(alice, review)

	w := e.do(http.MethodDelete, "/v1/titles/1", adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Reviews and their comments are gone with the title
	var titles, reviews, comments int64
	e.db.Model(&domain.Title{}).Count(&titles)
	e.db.Model(&domain.Review{}).Count(&reviews)
	e.db.Model(&domain.Comment{}).Count(&comments)
	assert.Zero(t, titles)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}
