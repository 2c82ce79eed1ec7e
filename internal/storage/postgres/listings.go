package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

var _ storage.Listings = (*ListingStore)(nil)

// ListingStore provides Postgres-backed persistence for listings.
type ListingStore struct {
	db *sql.DB
}

const listingColumns = `
	l.id, l.user_id, l.title, l.description, l.price, l.category,
	l.location, l.condition, l.picture, l.created_at, l.updated_at,
	u.name, u.email`

// Create inserts a new listing row.
func (s *ListingStore) Create(ctx context.Context, listing models.Listing) (models.Listing, error) {
	listing.ID = uuid.New()
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (id, user_id, title, description, price, category, location, condition, picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, listing.ID, listing.OwnerID, listing.Title, listing.Description, listing.Price,
		listing.Category, listing.Location, listing.Condition, nullString(listing.Picture),
		listing.CreatedAt, listing.UpdatedAt)
	if err != nil {
		return models.Listing{}, mapError(err)
	}
	return listing, nil
}

// GetByID fetches a listing with its owner's name and email joined in.
func (s *ListingStore) GetByID(ctx context.Context, id uuid.UUID) (models.Listing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		INNER JOIN users u ON l.user_id = u.id
		WHERE l.id = $1
	`, id)
	return scanListing(row)
}

// List returns listings newest first, narrowed by the filter.
func (s *ListingStore) List(ctx context.Context, filter storage.ListingFilter) ([]models.Listing, error) {
	var conds []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("l.category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(l.title ILIKE $%d OR l.description ILIKE $%d)", len(args), len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("l.user_id = $%d", len(args)))
	}

	query := `
		SELECT ` + listingColumns + `
		FROM listings l
		INNER JOIN users u ON l.user_id = u.id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY l.created_at DESC, l.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListingRow(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// Update rewrites the mutable fields of a listing.
func (s *ListingStore) Update(ctx context.Context, listing models.Listing) (models.Listing, error) {
	listing.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE listings
		SET title = $1, description = $2, price = $3, category = $4,
			location = $5, condition = $6, picture = $7, updated_at = $8
		WHERE id = $9
	`, listing.Title, listing.Description, listing.Price, listing.Category,
		listing.Location, listing.Condition, nullString(listing.Picture),
		listing.UpdatedAt, listing.ID)
	if err != nil {
		return models.Listing{}, mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Listing{}, storage.ErrNotFound
	}
	return listing, nil
}

// Delete removes a listing; favorites and interests cascade in the store.
func (s *ListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row *sql.Row) (models.Listing, error) {
	return scanListingRow(row)
}

func scanListingRow(row rowScanner) (models.Listing, error) {
	var listing models.Listing
	var picture sql.NullString
	err := row.Scan(&listing.ID, &listing.OwnerID, &listing.Title, &listing.Description,
		&listing.Price, &listing.Category, &listing.Location, &listing.Condition,
		&picture, &listing.CreatedAt, &listing.UpdatedAt,
		&listing.OwnerName, &listing.OwnerEmail)
	if err != nil {
		return models.Listing{}, mapError(err)
	}
	listing.Picture = picture.String
	return listing, nil
}
