package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a user's bookmark of a listing. At most one per (user, listing)
// pair, enforced by a unique constraint in the store.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ListingID uuid.UUID `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`

	// Joined listing info for the "my favorites" view.
	ListingTitle   string  `json:"listing_title,omitempty"`
	ListingPrice   float64 `json:"listing_price,omitempty"`
	ListingPicture string  `json:"listing_picture,omitempty"`
	OwnerName      string  `json:"owner_name,omitempty"`
}
