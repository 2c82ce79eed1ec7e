package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mercadito-app/mercadito-backend/internal/models"
	"github.com/mercadito-app/mercadito-backend/internal/storage"
)

// In-memory stores backing the handler tests. They honor the same contracts
// as the Postgres implementations: sentinel errors, uniqueness, and joined
// fields the handlers rely on.

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]models.User)}
}

func (f *fakeUsers) Create(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return models.User{}, storage.ErrNotFound
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	f.users[id] = user
	return nil
}

type fakeListings struct {
	mu       sync.Mutex
	listings map[uuid.UUID]models.Listing
	users    *fakeUsers
}

func newFakeListings(users *fakeUsers) *fakeListings {
	return &fakeListings{listings: make(map[uuid.UUID]models.Listing), users: users}
}

func (f *fakeListings) Create(_ context.Context, listing models.Listing) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing.ID = uuid.New()
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	f.listings[listing.ID] = listing
	return f.withOwner(listing), nil
}

func (f *fakeListings) GetByID(_ context.Context, id uuid.UUID) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing, ok := f.listings[id]
	if !ok {
		return models.Listing{}, storage.ErrNotFound
	}
	return f.withOwner(listing), nil
}

func (f *fakeListings) List(_ context.Context, filter storage.ListingFilter) ([]models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Listing
	for _, l := range f.listings {
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.OwnerID != nil && l.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, f.withOwner(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeListings) Update(_ context.Context, listing models.Listing) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[listing.ID]; !ok {
		return models.Listing{}, storage.ErrNotFound
	}
	listing.UpdatedAt = time.Now()
	f.listings[listing.ID] = listing
	return f.withOwner(listing), nil
}

func (f *fakeListings) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeListings) withOwner(listing models.Listing) models.Listing {
	if f.users != nil {
		if owner, ok := f.users.users[listing.OwnerID]; ok {
			listing.OwnerName = owner.Name
			listing.OwnerEmail = owner.Email
		}
	}
	return listing
}

type favKey struct {
	userID    uuid.UUID
	listingID uuid.UUID
}

type fakeFavorites struct {
	mu        sync.Mutex
	favorites map[favKey]models.Favorite
	listings  *fakeListings
}

func newFakeFavorites(listings *fakeListings) *fakeFavorites {
	return &fakeFavorites{favorites: make(map[favKey]models.Favorite), listings: listings}
}

func (f *fakeFavorites) Add(_ context.Context, userID, listingID uuid.UUID) (models.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := favKey{userID, listingID}
	if _, ok := f.favorites[key]; ok {
		return models.Favorite{}, storage.ErrAlreadyExists
	}
	fav := models.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}
	f.favorites[key] = fav
	return fav, nil
}

func (f *fakeFavorites) Exists(_ context.Context, userID, listingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favorites[favKey{userID, listingID}]
	return ok, nil
}

func (f *fakeFavorites) Remove(_ context.Context, userID, listingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := favKey{userID, listingID}
	if _, ok := f.favorites[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.favorites, key)
	return nil
}

func (f *fakeFavorites) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Favorite
	for _, fav := range f.favorites {
		if fav.UserID != userID {
			continue
		}
		if f.listings != nil {
			if l, ok := f.listings.listings[fav.ListingID]; ok {
				fav.ListingTitle = l.Title
				fav.ListingPrice = l.Price
				fav.ListingPicture = l.Picture
			}
		}
		out = append(out, fav)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeInterests struct {
	mu        sync.Mutex
	interests map[uuid.UUID]models.Interest
	listings  *fakeListings
	users     *fakeUsers
}

func newFakeInterests(listings *fakeListings, users *fakeUsers) *fakeInterests {
	return &fakeInterests{
		interests: make(map[uuid.UUID]models.Interest),
		listings:  listings,
		users:     users,
	}
}

func (f *fakeInterests) Create(_ context.Context, interest models.Interest) (models.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	interest.ID = uuid.New()
	interest.CreatedAt = time.Now()
	interest.UpdatedAt = interest.CreatedAt
	f.interests[interest.ID] = interest
	return f.enrich(interest), nil
}

func (f *fakeInterests) GetByID(_ context.Context, id uuid.UUID) (models.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	interest, ok := f.interests[id]
	if !ok {
		return models.Interest{}, storage.ErrNotFound
	}
	return f.enrich(interest), nil
}

func (f *fakeInterests) ListByListing(_ context.Context, listingID uuid.UUID) ([]models.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Interest
	for _, i := range f.interests {
		if i.ListingID == listingID {
			out = append(out, f.enrich(i))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeInterests) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Interest
	for _, i := range f.interests {
		if i.UserID == userID {
			out = append(out, f.enrich(i))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeInterests) UpdateMessage(_ context.Context, id uuid.UUID, message string) (models.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	interest, ok := f.interests[id]
	if !ok {
		return models.Interest{}, storage.ErrNotFound
	}
	interest.Message = message
	interest.UpdatedAt = time.Now()
	f.interests[id] = interest
	return f.enrich(interest), nil
}

func (f *fakeInterests) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.interests[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.interests, id)
	return nil
}

func (f *fakeInterests) MarkRead(_ context.Context, id, ownerID uuid.UUID) (models.Interest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	interest, ok := f.interests[id]
	if !ok {
		return models.Interest{}, storage.ErrNotFound
	}
	enriched := f.enrich(interest)
	if enriched.ListingOwnerID != ownerID {
		return models.Interest{}, storage.ErrNotFound
	}
	interest.IsRead = true
	interest.UpdatedAt = time.Now()
	f.interests[id] = interest
	return f.enrich(interest), nil
}

func (f *fakeInterests) MarkAllRead(_ context.Context, ownerID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for id, interest := range f.interests {
		enriched := f.enrich(interest)
		if enriched.ListingOwnerID == ownerID && !interest.IsRead {
			interest.IsRead = true
			f.interests[id] = interest
			count++
		}
	}
	return count, nil
}

func (f *fakeInterests) enrich(interest models.Interest) models.Interest {
	if f.listings != nil {
		if l, ok := f.listings.listings[interest.ListingID]; ok {
			interest.ListingOwnerID = l.OwnerID
			interest.ListingTitle = l.Title
			interest.ListingPrice = l.Price
			interest.ListingPicture = l.Picture
		}
	}
	if f.users != nil {
		if u, ok := f.users.users[interest.UserID]; ok {
			interest.UserName = u.Name
			interest.UserEmail = u.Email
			interest.UserPhone = u.Phone
		}
	}
	return interest
}

// recordingNotifier captures notifications so tests can assert delivery
// without Redis.
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Interest
}

func (r *recordingNotifier) NotifyInterest(_ context.Context, interest models.Interest, _ models.User, _ models.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, interest)
}
