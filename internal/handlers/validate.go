package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateRegistration(name, email, password string) []string {
	var errs []string
	if len(strings.TrimSpace(name)) < 2 {
		errs = append(errs, "name must be at least 2 characters")
	}
	if !emailRegex.MatchString(email) {
		errs = append(errs, "a valid email is required")
	}
	if len(password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	return errs
}

func validateLogin(email, password string) []string {
	var errs []string
	if email == "" {
		errs = append(errs, "email is required")
	}
	if password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

func validateListing(req listingRequest) []string {
	var errs []string
	if len(strings.TrimSpace(req.Title)) < 3 {
		errs = append(errs, "title must be at least 3 characters")
	}
	if len(strings.TrimSpace(req.Description)) < 10 {
		errs = append(errs, "description must be at least 10 characters")
	}
	if strings.TrimSpace(req.Category) == "" {
		errs = append(errs, "category is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		errs = append(errs, "location is required")
	}
	if strings.TrimSpace(req.Condition) == "" {
		errs = append(errs, "condition is required")
	} else if !models.ValidCondition(req.Condition) {
		errs = append(errs, "condition must be one of: new, like_new, used")
	}
	if req.Price == nil || *req.Price < 0 {
		errs = append(errs, "price must be a valid number greater than or equal to 0")
	}
	return errs
}

func validInterestMessage(message string) bool {
	return len(strings.TrimSpace(message)) >= 5
}

// uuidParam parses a UUID path parameter, answering 400 itself on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid parameter",
			"the "+name+" parameter must be a valid id")
		return uuid.Nil, false
	}
	return id, true
}
