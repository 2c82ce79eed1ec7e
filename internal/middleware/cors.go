package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS builds the CORS middleware for the configured origins. OPTIONS
// preflights are answered directly so they never reach auth or rate limits.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
