package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/policy"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

// InterestNotifier pushes a live notification for a freshly created interest.
// Delivery is best-effort and must never fail the request.
type InterestNotifier interface {
	NotifyInterest(ctx context.Context, interest models.Interest, from models.User, listing models.Listing)
}

// InterestHandler owns the interest message endpoints. Interests double as
// the listing owner's notifications.
type InterestHandler struct {
	interests storage.Interests
	listings  storage.Listings
	notifier  InterestNotifier
}

// NewInterestHandler wires the handler. notifier may be nil, in which case
// no live notifications are sent.
func NewInterestHandler(interests storage.Interests, listings storage.Listings, notifier InterestNotifier) *InterestHandler {
	return &InterestHandler{interests: interests, listings: listings, notifier: notifier}
}

type interestRequest struct {
	Message string `json:"message"`
}

// Create records the caller's interest in a listing and notifies its owner.
// The listing must exist, the caller must not be its owner, and the message
// must be at least 5 characters.
func (h *InterestHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	listingID, ok := uuidParam(w, r, "listingId")
	if !ok {
		return
	}

	listing, err := h.listings.GetByID(r.Context(), listingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "create interest: load listing", err)
		return
	}

	if !policy.CanExpressInterest(listing, user.ID) {
		respond.Error(w, http.StatusBadRequest, "action not allowed",
			"you cannot express interest in your own listing")
		return
	}

	var req interestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if !validInterestMessage(req.Message) {
		respond.ValidationError(w, "invalid interest data",
			[]string{"message must be at least 5 characters"})
		return
	}

	interest, err := h.interests.Create(r.Context(), models.Interest{
		UserID:    user.ID,
		ListingID: listing.ID,
		Message:   strings.TrimSpace(req.Message),
	})
	if err != nil {
		respond.Internal(w, "create interest", err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyInterest(r.Context(), interest, user, listing)
	}

	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "interest sent successfully",
		"interest": interest,
	})
}

// ListByListing returns all interests in a listing, visible only to its
// owner. The existence check runs before the ownership check.
func (h *InterestHandler) ListByListing(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	listingID, ok := uuidParam(w, r, "listingId")
	if !ok {
		return
	}

	listing, err := h.listings.GetByID(r.Context(), listingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found", "")
			return
		}
		respond.Internal(w, "list interests: load listing", err)
		return
	}

	if !policy.CanViewListingInterests(listing, user.ID) {
		respond.Error(w, http.StatusForbidden, "not authorized",
			"only the listing owner can view interested users")
		return
	}

	interests, err := h.interests.ListByListing(r.Context(), listingID)
	if err != nil {
		respond.Internal(w, "list interests", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"interests": interests, "count": len(interests)})
}

// ListMine returns the interests the caller has authored, with joined
// listing info.
func (h *InterestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	interests, err := h.interests.ListByUser(r.Context(), user.ID)
	if err != nil {
		respond.Internal(w, "list my interests", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"interests": interests, "count": len(interests)})
}

// GetByID returns a single interest, visible to its author or the listing
// owner.
func (h *InterestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	interest, err := h.interests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interest not found", "")
			return
		}
		respond.Internal(w, "get interest", err)
		return
	}

	if !policy.CanViewInterest(interest, user.ID) {
		respond.Error(w, http.StatusForbidden, "not authorized",
			"only the author or the listing owner can view this interest")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"interest": interest})
}

// Update edits an interest's message. Only its author may do so.
func (h *InterestHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	interest, err := h.interests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interest not found", "")
			return
		}
		respond.Internal(w, "update interest: load", err)
		return
	}

	if !policy.CanEditInterest(interest, user.ID) {
		respond.Error(w, http.StatusForbidden, "not authorized",
			"only the author can edit this interest")
		return
	}

	var req interestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if !validInterestMessage(req.Message) {
		respond.ValidationError(w, "invalid interest data",
			[]string{"message must be at least 5 characters"})
		return
	}

	updated, err := h.interests.UpdateMessage(r.Context(), id, strings.TrimSpace(req.Message))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interest not found", "")
			return
		}
		respond.Internal(w, "update interest", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message":  "interest updated successfully",
		"interest": updated,
	})
}

// Delete removes an interest. Only its author may do so.
func (h *InterestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	interest, err := h.interests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interest not found", "")
			return
		}
		respond.Internal(w, "delete interest: load", err)
		return
	}

	if !policy.CanEditInterest(interest, user.ID) {
		respond.Error(w, http.StatusForbidden, "not authorized",
			"only the author can delete this interest")
		return
	}

	if err := h.interests.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interest not found", "")
			return
		}
		respond.Internal(w, "delete interest", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "interest deleted successfully",
	})
}

// MarkRead marks one interest as read. Only the owner of the listing it
// targets may do so; the store enforces the scope, so a non-owner sees 404.
func (h *InterestHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	interest, err := h.interests.MarkRead(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interest not found", "")
			return
		}
		respond.Internal(w, "mark interest read", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message":  "interest marked as read",
		"interest": interest,
	})
}

// MarkAllRead marks every unread interest in the caller's listings as read
// and reports how many changed.
func (h *InterestHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	updated, err := h.interests.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		respond.Internal(w, "mark all interests read", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "all interests marked as read",
		"updated": updated,
	})
}
