package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

// Store wraps a PostgreSQL connection pool. It is created once at startup,
// injected into handlers, and closed on shutdown.
type Store struct {
	db *sql.DB

	Users     *UserStore
	Listings  *ListingStore
	Favorites *FavoriteStore
	Interests *InterestStore
}

// New opens a connection pool, verifies it, and creates the schema.
func New(postgresURI string) (*Store, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	s.Users = &UserStore{db: db}
	s.Listings = &ListingStore{db: db}
	s.Favorites = &FavoriteStore{db: db}
	s.Interests = &InterestStore{db: db}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(50),
			picture TEXT,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS listings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
			category VARCHAR(100) NOT NULL,
			location VARCHAR(255) NOT NULL,
			condition VARCHAR(50) NOT NULL,
			picture TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, listing_id)
		)`,

		`CREATE TABLE IF NOT EXISTS interests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_user_id ON listings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_listing_id ON favorites(listing_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interests_listing_id ON interests(listing_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interests_user_id ON interests(user_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// mapError translates driver-level errors into storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	return err
}
