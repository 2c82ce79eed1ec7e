package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mercadito-app/mercadito-backend/internal/handlers"
	"github.com/mercadito-app/mercadito-backend/internal/middleware"
)

// Handlers bundles everything the route table mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Listings  *handlers.ListingHandler
	Favorites *handlers.FavoriteHandler
	Interests *handlers.InterestHandler
	Upload    *handlers.UploadHandler
	NotifyWS  *handlers.NotifyWSHandler
}

// Setup mounts the API on the router. Public routes go through the optional
// gate where viewer identity personalizes the response; everything else
// requires auth.
func Setup(r chi.Router, gate *middleware.Gate, h Handlers) {
	// Auth
	r.Post("/api/auth/register", h.Auth.Register)
	r.Post("/api/auth/login", h.Auth.Login)
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/api/auth/me", h.Auth.Me)
		r.Put("/api/auth/profile", h.Auth.UpdateProfile)
		r.Put("/api/auth/password", h.Auth.ChangePassword)
	})

	// Listings: public reads with optional viewer identity
	r.Group(func(r chi.Router) {
		r.Use(gate.Optional)
		r.Get("/api/listings", h.Listings.List)
		r.Get("/api/listings/user/{userId}", h.Listings.ByUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/api/listings/my", h.Listings.My)
		r.Post("/api/listings", h.Listings.Create)
		r.Put("/api/listings/{id}", h.Listings.Update)
		r.Delete("/api/listings/{id}", h.Listings.Delete)
	})
	// Static segments (/my, /user) take precedence over the {id} wildcard.
	r.Group(func(r chi.Router) {
		r.Use(gate.Optional)
		r.Get("/api/listings/{id}", h.Listings.GetByID)
	})

	// Favorites
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/api/favorites", h.Favorites.ListMine)
		r.Get("/api/favorites/check/{listingId}", h.Favorites.Check)
		r.Post("/api/favorites/{listingId}", h.Favorites.Add)
		r.Delete("/api/favorites/{listingId}", h.Favorites.Remove)
	})

	// Interests
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Post("/api/interests/listing/{listingId}", h.Interests.Create)
		r.Get("/api/interests/listing/{listingId}", h.Interests.ListByListing)
		r.Get("/api/interests/my", h.Interests.ListMine)
		r.Put("/api/interests/read-all", h.Interests.MarkAllRead)
		r.Get("/api/interests/{id}", h.Interests.GetByID)
		r.Put("/api/interests/{id}", h.Interests.Update)
		r.Delete("/api/interests/{id}", h.Interests.Delete)
		r.Put("/api/interests/{id}/read", h.Interests.MarkRead)
	})

	// Uploads
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Post("/api/upload", h.Upload.UploadImage)
	})

	// WebSocket notifications authenticate inside the handler so browser
	// clients can pass the token as a query parameter.
	r.Get("/ws/notifications", h.NotifyWS.Serve)
}
