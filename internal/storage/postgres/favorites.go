package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

var _ storage.Favorites = (*FavoriteStore)(nil)

// FavoriteStore provides Postgres-backed persistence for favorites.
type FavoriteStore struct {
	db *sql.DB
}

// Add inserts a favorite. The unique constraint on (user_id, listing_id) is
// the backstop against concurrent duplicate inserts; its violation surfaces
// as ErrAlreadyExists just like the handler's pre-check.
func (s *FavoriteStore) Add(ctx context.Context, userID, listingID uuid.UUID) (models.Favorite, error) {
	fav := models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, listing_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, fav.ID, fav.UserID, fav.ListingID, fav.CreatedAt)
	if err != nil {
		return models.Favorite{}, mapError(err)
	}
	return fav, nil
}

// Exists reports whether the pair is favorited.
func (s *FavoriteStore) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND listing_id = $2)
	`, userID, listingID).Scan(&exists)
	return exists, mapError(err)
}

// Remove deletes a favorite, returning ErrNotFound when the pair was not
// favorited.
func (s *FavoriteStore) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2
	`, userID, listingID)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListByUser returns a user's favorites newest first, with listing info
// joined in.
func (s *FavoriteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.listing_id, f.created_at,
			l.title, l.price, l.picture, u.name
		FROM favorites f
		INNER JOIN listings l ON f.listing_id = l.id
		INNER JOIN users u ON l.user_id = u.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, f.id DESC
	`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var fav models.Favorite
		var picture sql.NullString
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.ListingID, &fav.CreatedAt,
			&fav.ListingTitle, &fav.ListingPrice, &picture, &fav.OwnerName); err != nil {
			return nil, err
		}
		fav.ListingPicture = picture.String
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}
