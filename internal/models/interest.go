package models

import (
	"time"

	"github.com/google/uuid"
)

// Interest is a message a non-owner sends about a listing. It doubles as the
// listing owner's notification: is_read tracks whether the owner has seen it.
type Interest struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ListingID uuid.UUID `json:"listing_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Listing owner, loaded on every read so handlers can authorize.
	ListingOwnerID uuid.UUID `json:"listing_owner_id"`

	// Author contact info, populated on the owner-facing views.
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`

	// Listing info, populated on the author-facing "my interests" view.
	ListingTitle   string  `json:"listing_title,omitempty"`
	ListingPrice   float64 `json:"listing_price,omitempty"`
	ListingPicture string  `json:"listing_picture,omitempty"`
	OwnerName      string  `json:"owner_name,omitempty"`
}
