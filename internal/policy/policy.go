// Package policy holds the per-resource authorization rules as pure decision
// functions. Handlers load the resource first (missing resources are a 404
// before any of these run), then consult the policy, then apply business
// rules, in that order.
package policy

import (
	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
)

// CanModifyListing permits update/delete only to the listing's owner.
func CanModifyListing(listing models.Listing, callerID uuid.UUID) bool {
	return listing.OwnerID == callerID
}

// CanViewListingInterests permits listing the interested parties only to the
// listing's owner.
func CanViewListingInterests(listing models.Listing, callerID uuid.UUID) bool {
	return listing.OwnerID == callerID
}

// CanViewInterest permits reading an individual interest to its author or to
// the owner of the listing it targets.
func CanViewInterest(interest models.Interest, callerID uuid.UUID) bool {
	return interest.UserID == callerID || interest.ListingOwnerID == callerID
}

// CanEditInterest permits update/delete only to the interest's author. The
// listing owner may read it but never change it.
func CanEditInterest(interest models.Interest, callerID uuid.UUID) bool {
	return interest.UserID == callerID
}

// CanExpressInterest forbids a user from authoring an interest in their own
// listing. Violations surface as 400, not 403: it is a business rule, not an
// ownership check.
func CanExpressInterest(listing models.Listing, callerID uuid.UUID) bool {
	return listing.OwnerID != callerID
}
