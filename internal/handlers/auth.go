package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mercadito-app/mercadito-backend/internal/auth"
	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
	"github.com/mercadito-app/mercadito-backend/pkg/utils"
)

// AuthHandler owns registration, login, and profile endpoints.
type AuthHandler struct {
	users  storage.Users
	tokens *auth.TokenManager
}

func NewAuthHandler(users storage.Users, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Picture  string `json:"picture,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Token   string      `json:"token"`
}

// Register creates an account and returns the user with a fresh token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if details := validateRegistration(req.Name, req.Email, req.Password); len(details) > 0 {
		respond.ValidationError(w, "invalid registration data", details)
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		respond.Error(w, http.StatusConflict, "user already exists",
			"a user is already registered with this email")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		respond.Internal(w, "register: check email", err)
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		respond.Internal(w, "register: hash password", err)
		return
	}

	user, err := h.users.Create(r.Context(), models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		Picture:      strings.TrimSpace(req.Picture),
		PasswordHash: passwordHash,
	})
	if err != nil {
		// Concurrent registration with the same email; the unique index wins.
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "user already exists",
				"a user is already registered with this email")
			return
		}
		respond.Internal(w, "register: create user", err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respond.Internal(w, "register: issue token", err)
		return
	}

	respond.JSON(w, http.StatusCreated, authResponse{
		Message: "user registered successfully",
		User:    user,
		Token:   token,
	})
}

// Login verifies credentials and returns the user with a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if details := validateLogin(req.Email, req.Password); len(details) > 0 {
		respond.ValidationError(w, "invalid login data", details)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials",
				"email or password is incorrect")
			return
		}
		respond.Internal(w, "login: load user", err)
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials",
			"email or password is incorrect")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respond.Internal(w, "login: issue token", err)
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{
		Message: "login successful",
		User:    user,
		Token:   token,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	respond.JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

type updateProfileRequest struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// UpdateProfile mutates the caller's profile fields; absent fields keep their
// current values.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if req.Email != "" {
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if !emailRegex.MatchString(req.Email) {
			respond.ValidationError(w, "invalid profile data", []string{"a valid email is required"})
			return
		}
		if req.Email != user.Email {
			existing, err := h.users.GetByEmail(r.Context(), req.Email)
			if err == nil && existing.ID != user.ID {
				respond.Error(w, http.StatusConflict, "email already in use",
					"this email is already registered by another user")
				return
			} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
				respond.Internal(w, "update profile: check email", err)
				return
			}
			user.Email = req.Email
		}
	}
	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		user.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Picture != "" {
		user.Picture = strings.TrimSpace(req.Picture)
	}

	updated, err := h.users.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found", "")
			return
		}
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "email already in use",
				"this email is already registered by another user")
			return
		}
		respond.Internal(w, "update profile", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "profile updated successfully",
		"user":    updated,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword swaps the caller's password after verifying the current
// one. Outstanding tokens stay valid until they expire.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	var details []string
	if req.CurrentPassword == "" {
		details = append(details, "current password is required")
	}
	if len(req.NewPassword) < 6 {
		details = append(details, "new password must be at least 6 characters")
	}
	if len(details) > 0 {
		respond.ValidationError(w, "invalid password data", details)
		return
	}

	valid, err := utils.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !valid {
		respond.Error(w, http.StatusBadRequest, "incorrect password",
			"the current password is incorrect")
		return
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respond.Internal(w, "change password: hash", err)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, passwordHash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found", "")
			return
		}
		respond.Internal(w, "change password", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "password updated successfully",
	})
}
