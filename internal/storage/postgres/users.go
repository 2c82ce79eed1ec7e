package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

var _ storage.Users = (*UserStore)(nil)

// UserStore provides Postgres-backed persistence for users.
type UserStore struct {
	db *sql.DB
}

// Create inserts a new user row.
func (s *UserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, picture, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Name, user.Email, nullString(user.Phone), nullString(user.Picture),
		user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

// GetByID fetches a user by id.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, picture, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, picture, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

// Update rewrites the mutable profile fields of a user.
func (s *UserStore) Update(ctx context.Context, user models.User) (models.User, error) {
	user.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, phone = $3, picture = $4, updated_at = $5
		WHERE id = $6
	`, user.Name, user.Email, nullString(user.Phone), nullString(user.Picture),
		user.UpdatedAt, user.ID)
	if err != nil {
		return models.User{}, mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// UpdatePassword stores a new password hash for the user.
func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3
	`, passwordHash, time.Now(), id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var phone, picture sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &phone, &picture,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, mapError(err)
	}
	user.Phone = phone.String
	user.Picture = picture.String
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
