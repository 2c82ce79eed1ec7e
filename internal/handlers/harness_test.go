package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mercadito-app/mercadito-backend/internal/auth"
	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/pkg/utils"
)

// testServer wires the full handler stack over in-memory stores, mounted on
// the same route shapes the server uses.
type testServer struct {
	router    chi.Router
	users     *fakeUsers
	listings  *fakeListings
	favorites *fakeFavorites
	interests *fakeInterests
	notifier  *recordingNotifier
	tokens    *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newFakeUsers()
	listings := newFakeListings(users)
	favorites := newFakeFavorites(listings)
	interests := newFakeInterests(listings, users)
	notifier := &recordingNotifier{}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	gate := middleware.NewGate(tokens, users)

	authH := NewAuthHandler(users, tokens)
	listingH := NewListingHandler(listings, favorites)
	favoriteH := NewFavoriteHandler(favorites, listings)
	interestH := NewInterestHandler(interests, listings, notifier)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authH.Register)
	r.Post("/api/auth/login", authH.Login)
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/api/auth/me", authH.Me)
		r.Put("/api/auth/profile", authH.UpdateProfile)
		r.Put("/api/auth/password", authH.ChangePassword)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Optional)
		r.Get("/api/listings", listingH.List)
		r.Get("/api/listings/user/{userId}", listingH.ByUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/api/listings/my", listingH.My)
		r.Post("/api/listings", listingH.Create)
		r.Put("/api/listings/{id}", listingH.Update)
		r.Delete("/api/listings/{id}", listingH.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Optional)
		r.Get("/api/listings/{id}", listingH.GetByID)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/api/favorites", favoriteH.ListMine)
		r.Get("/api/favorites/check/{listingId}", favoriteH.Check)
		r.Post("/api/favorites/{listingId}", favoriteH.Add)
		r.Delete("/api/favorites/{listingId}", favoriteH.Remove)

		r.Post("/api/interests/listing/{listingId}", interestH.Create)
		r.Get("/api/interests/listing/{listingId}", interestH.ListByListing)
		r.Get("/api/interests/my", interestH.ListMine)
		r.Put("/api/interests/read-all", interestH.MarkAllRead)
		r.Get("/api/interests/{id}", interestH.GetByID)
		r.Put("/api/interests/{id}", interestH.Update)
		r.Delete("/api/interests/{id}", interestH.Delete)
		r.Put("/api/interests/{id}/read", interestH.MarkRead)
	})

	return &testServer{
		router:    r,
		users:     users,
		listings:  listings,
		favorites: favorites,
		interests: interests,
		notifier:  notifier,
		tokens:    tokens,
	}
}

// registerUser seeds an account directly and returns it with a valid token.
func (ts *testServer) registerUser(t *testing.T, name, email string) (models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user, err := ts.users.Create(context.Background(), models.User{
		Name:         name,
		Email:        email,
		Phone:        "5551234",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	token, err := ts.tokens.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}

// createListing seeds a listing owned by the given user.
func (ts *testServer) createListing(t *testing.T, owner models.User, title string) models.Listing {
	t.Helper()
	listing, err := ts.listings.Create(context.Background(), models.Listing{
		OwnerID:     owner.ID,
		Title:       title,
		Description: "a perfectly fine description",
		Price:       25.50,
		Category:    "electronics",
		Location:    "Centro",
		Condition:   models.ConditionUsed,
	})
	require.NoError(t, err)
	return listing
}

// do runs a request through the router. body may be nil or any
// JSON-marshalable value; token "" means anonymous.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}
