package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/policy"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

// ListingHandler owns the listing CRUD endpoints.
type ListingHandler struct {
	listings  storage.Listings
	favorites storage.Favorites
}

func NewListingHandler(listings storage.Listings, favorites storage.Favorites) *ListingHandler {
	return &ListingHandler{listings: listings, favorites: favorites}
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Condition   string   `json:"condition"`
	Picture     string   `json:"picture,omitempty"`
}

// List returns listings matching the optional category/search/pagination
// query parameters. When the caller is authenticated, each listing carries
// its is_favorite flag; anonymous callers get the same data without it.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := storage.ListingFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:    50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			filter.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	listings, err := h.listings.List(r.Context(), filter)
	if err != nil {
		respond.Internal(w, "list listings", err)
		return
	}

	if user, ok := middleware.CurrentUser(r.Context()); ok {
		h.annotateFavorites(r, listings, user)
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"listings": listings, "count": len(listings)})
}

// GetByID returns a single listing, with is_favorite for authenticated
// callers.
func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "get listing", err)
		return
	}

	if user, ok := middleware.CurrentUser(r.Context()); ok {
		if fav, err := h.favorites.Exists(r.Context(), user.ID, listing.ID); err == nil {
			listing.IsFavorite = &fav
		}
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"listing": listing})
}

// ByUser returns every listing owned by the user in the path.
func (h *ListingHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	listings, err := h.listings.List(r.Context(), storage.ListingFilter{OwnerID: &ownerID})
	if err != nil {
		respond.Internal(w, "list user listings", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"listings": listings, "count": len(listings)})
}

// My returns the authenticated caller's own listings.
func (h *ListingHandler) My(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	listings, err := h.listings.List(r.Context(), storage.ListingFilter{OwnerID: &user.ID})
	if err != nil {
		respond.Internal(w, "list my listings", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"listings": listings, "count": len(listings)})
}

// Create adds a new listing owned by the caller.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if details := validateListing(req); len(details) > 0 {
		respond.ValidationError(w, "invalid listing data", details)
		return
	}

	listing, err := h.listings.Create(r.Context(), models.Listing{
		OwnerID:     user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       *req.Price,
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		Condition:   req.Condition,
		Picture:     strings.TrimSpace(req.Picture),
	})
	if err != nil {
		respond.Internal(w, "create listing", err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "listing created successfully",
		"listing": listing,
	})
}

type listingUpdateRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Picture     *string  `json:"picture,omitempty"`
}

// Update partially updates a listing. Only the owner may do so; the existence
// check runs before the ownership check.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "update listing: load", err)
		return
	}

	if !policy.CanModifyListing(listing, user.ID) {
		respond.Error(w, http.StatusForbidden, "not authorized",
			"only the listing owner can modify it")
		return
	}

	var req listingUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	var details []string
	if req.Title != nil {
		if len(strings.TrimSpace(*req.Title)) < 3 {
			details = append(details, "title must be at least 3 characters")
		} else {
			listing.Title = strings.TrimSpace(*req.Title)
		}
	}
	if req.Description != nil {
		if len(strings.TrimSpace(*req.Description)) < 10 {
			details = append(details, "description must be at least 10 characters")
		} else {
			listing.Description = strings.TrimSpace(*req.Description)
		}
	}
	if req.Price != nil {
		if *req.Price < 0 {
			details = append(details, "price must be a valid number greater than or equal to 0")
		} else {
			listing.Price = *req.Price
		}
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			details = append(details, "category is required")
		} else {
			listing.Category = strings.TrimSpace(*req.Category)
		}
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			details = append(details, "location is required")
		} else {
			listing.Location = strings.TrimSpace(*req.Location)
		}
	}
	if req.Condition != nil {
		if !models.ValidCondition(*req.Condition) {
			details = append(details, "condition must be one of: new, like_new, used")
		} else {
			listing.Condition = *req.Condition
		}
	}
	if req.Picture != nil {
		listing.Picture = strings.TrimSpace(*req.Picture)
	}
	if len(details) > 0 {
		respond.ValidationError(w, "invalid listing data", details)
		return
	}

	updated, err := h.listings.Update(r.Context(), listing)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "update listing", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "listing updated successfully",
		"listing": updated,
	})
}

// Delete removes a listing. Only the owner may do so.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "delete listing: load", err)
		return
	}

	if !policy.CanModifyListing(listing, user.ID) {
		respond.Error(w, http.StatusForbidden, "not authorized",
			"only the listing owner can delete it")
		return
	}

	if err := h.listings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "delete listing", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "listing deleted successfully",
	})
}

// annotateFavorites fills IsFavorite on each listing for the given viewer.
// Lookup failures leave the flag unset rather than failing the request.
func (h *ListingHandler) annotateFavorites(r *http.Request, listings []models.Listing, user models.User) {
	for i := range listings {
		fav, err := h.favorites.Exists(r.Context(), user.ID, listings[i].ID)
		if err != nil {
			continue
		}
		listings[i].IsFavorite = &fav
	}
}
