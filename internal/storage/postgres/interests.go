package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

var _ storage.Interests = (*InterestStore)(nil)

// InterestStore provides Postgres-backed persistence for interest messages.
type InterestStore struct {
	db *sql.DB
}

// Create inserts a new interest row.
func (s *InterestStore) Create(ctx context.Context, interest models.Interest) (models.Interest, error) {
	interest.ID = uuid.New()
	now := time.Now()
	interest.CreatedAt = now
	interest.UpdatedAt = now
	interest.IsRead = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interests (id, user_id, listing_id, message, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, interest.ID, interest.UserID, interest.ListingID, interest.Message,
		interest.IsRead, interest.CreatedAt, interest.UpdatedAt)
	if err != nil {
		return models.Interest{}, mapError(err)
	}
	return interest, nil
}

// GetByID fetches an interest with the listing owner joined in for
// authorization, plus author and listing context.
func (s *InterestStore) GetByID(ctx context.Context, id uuid.UUID) (models.Interest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.user_id, i.listing_id, i.message, i.is_read,
			i.created_at, i.updated_at, l.user_id, u.name, l.title, owner.name
		FROM interests i
		INNER JOIN listings l ON i.listing_id = l.id
		INNER JOIN users u ON i.user_id = u.id
		INNER JOIN users owner ON l.user_id = owner.id
		WHERE i.id = $1
	`, id)

	var in models.Interest
	err := row.Scan(&in.ID, &in.UserID, &in.ListingID, &in.Message, &in.IsRead,
		&in.CreatedAt, &in.UpdatedAt, &in.ListingOwnerID, &in.UserName,
		&in.ListingTitle, &in.OwnerName)
	if err != nil {
		return models.Interest{}, mapError(err)
	}
	return in, nil
}

// ListByListing returns all interests for a listing newest first, enriched
// with author contact info for the owner's view.
func (s *InterestStore) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.Interest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.user_id, i.listing_id, i.message, i.is_read,
			i.created_at, i.updated_at, l.user_id,
			u.name, u.email, u.phone
		FROM interests i
		INNER JOIN listings l ON i.listing_id = l.id
		INNER JOIN users u ON i.user_id = u.id
		WHERE i.listing_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`, listingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var in models.Interest
		var phone sql.NullString
		if err := rows.Scan(&in.ID, &in.UserID, &in.ListingID, &in.Message, &in.IsRead,
			&in.CreatedAt, &in.UpdatedAt, &in.ListingOwnerID,
			&in.UserName, &in.UserEmail, &phone); err != nil {
			return nil, err
		}
		in.UserPhone = phone.String
		interests = append(interests, in)
	}
	return interests, rows.Err()
}

// ListByUser returns the interests a user has authored, with listing context
// joined in.
func (s *InterestStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Interest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.user_id, i.listing_id, i.message, i.is_read,
			i.created_at, i.updated_at, l.user_id,
			l.title, l.price, l.picture, owner.name
		FROM interests i
		INNER JOIN listings l ON i.listing_id = l.id
		INNER JOIN users owner ON l.user_id = owner.id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var in models.Interest
		var picture sql.NullString
		if err := rows.Scan(&in.ID, &in.UserID, &in.ListingID, &in.Message, &in.IsRead,
			&in.CreatedAt, &in.UpdatedAt, &in.ListingOwnerID,
			&in.ListingTitle, &in.ListingPrice, &picture, &in.OwnerName); err != nil {
			return nil, err
		}
		in.ListingPicture = picture.String
		interests = append(interests, in)
	}
	return interests, rows.Err()
}

// UpdateMessage rewrites the message of an interest.
func (s *InterestStore) UpdateMessage(ctx context.Context, id uuid.UUID, message string) (models.Interest, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE interests SET message = $1, updated_at = $2 WHERE id = $3
	`, message, time.Now(), id)
	if err != nil {
		return models.Interest{}, mapError(err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes an interest.
func (s *InterestStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM interests WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkRead flags one interest as read, scoped to the owner of the listing it
// targets so nobody can mark someone else's notifications.
func (s *InterestStore) MarkRead(ctx context.Context, id, ownerID uuid.UUID) (models.Interest, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interests i SET is_read = TRUE, updated_at = $1
		FROM listings l
		WHERE i.listing_id = l.id AND i.id = $2 AND l.user_id = $3
	`, time.Now(), id, ownerID)
	if err != nil {
		return models.Interest{}, mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Interest{}, storage.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// MarkAllRead flags every unread interest on the owner's listings as read and
// reports how many rows changed.
func (s *InterestStore) MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interests i SET is_read = TRUE, updated_at = $1
		FROM listings l
		WHERE i.listing_id = l.id AND l.user_id = $2 AND i.is_read = FALSE
	`, time.Now(), ownerID)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
