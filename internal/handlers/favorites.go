package handlers

import (
	"errors"
	"net/http"

	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

// FavoriteHandler owns the favorite (bookmark) endpoints.
type FavoriteHandler struct {
	favorites storage.Favorites
	listings  storage.Listings
}

func NewFavoriteHandler(favorites storage.Favorites, listings storage.Listings) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, listings: listings}
}

// Add bookmarks a listing for the caller. The listing must exist, and a
// second Add for the same pair answers 409.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	listingID, ok := uuidParam(w, r, "listingId")
	if !ok {
		return
	}

	if _, err := h.listings.GetByID(r.Context(), listingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "add favorite: load listing", err)
		return
	}

	exists, err := h.favorites.Exists(r.Context(), user.ID, listingID)
	if err != nil {
		respond.Internal(w, "add favorite: check", err)
		return
	}
	if exists {
		respond.Error(w, http.StatusConflict, "already favorited",
			"this listing is already in your favorites")
		return
	}

	favorite, err := h.favorites.Add(r.Context(), user.ID, listingID)
	if err != nil {
		// The unique constraint catches races the precheck misses.
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "already favorited",
				"this listing is already in your favorites")
			return
		}
		respond.Internal(w, "add favorite", err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "listing added to favorites",
		"favorite": favorite,
	})
}

// ListMine returns the caller's favorites with joined listing info.
func (h *FavoriteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	favorites, err := h.favorites.ListByUser(r.Context(), user.ID)
	if err != nil {
		respond.Internal(w, "list favorites", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites, "count": len(favorites)})
}

// Check reports whether the caller has favorited the listing.
func (h *FavoriteHandler) Check(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	listingID, ok := uuidParam(w, r, "listingId")
	if !ok {
		return
	}

	exists, err := h.favorites.Exists(r.Context(), user.ID, listingID)
	if err != nil {
		respond.Internal(w, "check favorite", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"isFavorite": exists})
}

// Remove deletes the caller's favorite of the listing, answering 404 when it
// was never favorited.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	listingID, ok := uuidParam(w, r, "listingId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), user.ID, listingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "favorite not found",
				"this listing is not in your favorites")
			return
		}
		respond.Internal(w, "remove favorite", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "listing removed from favorites",
	})
}
