package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/auth"
	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

type contextKey struct{}

var userContextKey contextKey

// UserFinder is the slice of the user store the gate needs.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

// Gate authenticates requests from bearer tokens. Require rejects on any
// failure; Optional proceeds anonymously instead, for endpoints that serve
// both signed-in and anonymous viewers.
type Gate struct {
	tokens *auth.TokenManager
	users  UserFinder
}

// NewGate constructs the auth gate.
func NewGate(tokens *auth.TokenManager, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Require is the mandatory-auth middleware.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r)
		if token == "" {
			respond.Error(w, http.StatusUnauthorized, "access token required",
				"a valid authorization token must be provided")
			return
		}

		userID, err := g.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respond.Error(w, http.StatusForbidden, "expired token",
					"the token has expired, please log in again")
				return
			}
			respond.Error(w, http.StatusForbidden, "invalid token",
				"the provided token is not valid")
			return
		}

		user, err := g.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Token outlived the account.
				respond.Error(w, http.StatusUnauthorized, "user not found",
					"the token does not correspond to a valid user")
				return
			}
			respond.Internal(w, "auth gate: load user", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// Optional is the optional-auth middleware: any failure (missing token,
// invalid, expired, user deleted) proceeds without an identity.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := g.tokens.Verify(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := g.users.GetByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// Authenticate resolves a raw token to a user outside the middleware chain.
// The WebSocket endpoint uses it for tokens carried in a query parameter.
func (g *Gate) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := g.tokens.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ExtractBearerToken pulls the token out of the Authorization header.
func ExtractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func withUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser returns the authenticated user attached by the gate, if any.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
