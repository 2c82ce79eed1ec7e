package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Users captures user persistence operations needed by handlers.
type Users interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ListingFilter narrows List results. Zero values mean "no filter".
type ListingFilter struct {
	Category string
	Search   string
	OwnerID  *uuid.UUID
	Limit    int
	Offset   int
}

// Listings captures listing persistence operations.
type Listings interface {
	Create(ctx context.Context, listing models.Listing) (models.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	Update(ctx context.Context, listing models.Listing) (models.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Favorites captures favorite persistence operations. Add returns
// ErrAlreadyExists for a duplicate pair, Remove returns ErrNotFound when the
// pair is not favorited.
type Favorites interface {
	Add(ctx context.Context, userID, listingID uuid.UUID) (models.Favorite, error)
	Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, listingID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error)
}

// Interests captures interest persistence operations. Reads always include
// the listing owner id so handlers can authorize.
type Interests interface {
	Create(ctx context.Context, interest models.Interest) (models.Interest, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Interest, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.Interest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error)
	UpdateMessage(ctx context.Context, id uuid.UUID, message string) (models.Interest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkRead(ctx context.Context, id, ownerID uuid.UUID) (models.Interest, error)
	MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int, error)
}
