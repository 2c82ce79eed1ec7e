package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing conditions accepted on create/update.
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionUsed    = "used"
)

// Listing is a marketplace item owned by a single user.
type Listing struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Condition   string    `json:"condition"`
	Picture     string    `json:"picture,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined owner info, present on read paths.
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`

	// Set for authenticated viewers on read paths, nil for anonymous ones.
	IsFavorite *bool `json:"is_favorite,omitempty"`
}

// ValidCondition reports whether s is one of the accepted condition values.
func ValidCondition(s string) bool {
	switch s {
	case ConditionNew, ConditionLikeNew, ConditionUsed:
		return true
	}
	return false
}
