package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full favorite lifecycle between two users: favorite, duplicate, check,
// unfavorite, remove again.
func TestFavoriteLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ana, _ := ts.registerUser(t, "Ana", "ana@example.com")
	_, betoToken := ts.registerUser(t, "Beto", "beto@example.com")
	listing := ts.createListing(t, ana, "Bicicleta roja")
	path := "/api/favorites/" + listing.ID.String()

	rec := ts.do(t, http.MethodPost, path, betoToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, path, betoToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already favorited")

	rec = ts.do(t, http.MethodGet, "/api/favorites/check/"+listing.ID.String(), betoToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["isFavorite"])

	rec = ts.do(t, http.MethodDelete, path, betoToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, path, betoToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/favorites/check/"+listing.ID.String(), betoToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["isFavorite"])
}

func TestFavoriteNonexistentListing(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "Ana", "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/favorites/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "listing not found")
}

func TestListFavoritesIncludesListingInfo(t *testing.T) {
	ts := newTestServer(t)
	ana, _ := ts.registerUser(t, "Ana", "ana@example.com")
	_, betoToken := ts.registerUser(t, "Beto", "beto@example.com")
	listing := ts.createListing(t, ana, "Bicicleta roja")

	rec := ts.do(t, http.MethodPost, "/api/favorites/"+listing.ID.String(), betoToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/favorites", betoToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
	favorites := body["favorites"].([]interface{})
	fav := favorites[0].(map[string]interface{})
	assert.Equal(t, "Bicicleta roja", fav["listing_title"])
}

func TestFavoritesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/favorites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
