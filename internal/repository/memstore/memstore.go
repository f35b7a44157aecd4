// Package memstore keeps accounts and listings in process memory. It backs
// DB_DRIVER=memory and the service tests, and mirrors the PostgreSQL
// repositories' ordering, uniqueness and orphaning rules.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"marketplace/internal/apperr"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	listings map[string]models.Listing
	now      func() time.Time
}

func New() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		listings: make(map[string]models.Listing),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source. Tests use it to force collisions.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Account: accounts{s},
		Listing: listings{s},
		Tables:  tables{},
	}
}

type accounts struct{ s *Store }

func (r accounts) Create(ctx context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.Email == account.Email {
			return apperr.Conflict("email is already registered")
		}
	}

	now := r.s.now()
	account.AccountID = uuid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Role == "" {
		account.Role = models.RoleStandard
	}
	r.s.accounts[account.AccountID] = cloneAccount(*account)
	return nil
}

func (r accounts) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	account, ok := r.s.accounts[accountID]
	if !ok {
		return nil, apperr.NotFound("account", accountID)
	}
	out := cloneAccount(account)
	return &out, nil
}

func (r accounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, account := range r.s.accounts {
		if account.Email == email {
			out := cloneAccount(account)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("account", email)
}

func (r accounts) List(ctx context.Context) ([]models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Account, 0, len(r.s.accounts))
	for _, account := range r.s.accounts {
		out = append(out, cloneAccount(account))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

func (r accounts) Update(ctx context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[account.AccountID]; !ok {
		return apperr.NotFound("account", account.AccountID)
	}
	for id, existing := range r.s.accounts {
		if id != account.AccountID && existing.Email == account.Email {
			return apperr.Conflict("email is already registered")
		}
	}

	account.UpdatedAt = r.s.now()
	r.s.accounts[account.AccountID] = cloneAccount(*account)
	return nil
}

func (r accounts) Delete(ctx context.Context, accountID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[accountID]; !ok {
		return apperr.NotFound("account", accountID)
	}
	delete(r.s.accounts, accountID)

	for id, listing := range r.s.listings {
		if listing.OwnerID != nil && *listing.OwnerID == accountID {
			listing.OwnerID = nil
			r.s.listings[id] = listing
		}
	}
	return nil
}

type listings struct{ s *Store }

func (r listings) Create(ctx context.Context, listing *models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	listing.ListingID = uuid.New().String()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.Owner = nil
	r.s.listings[listing.ListingID] = cloneListing(*listing)
	return nil
}

func (r listings) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	listing, ok := r.s.listings[listingID]
	if !ok {
		return nil, apperr.NotFound("listing", listingID)
	}
	out := r.withOwner(listing)
	return &out, nil
}

func (r listings) ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	return r.filter(func(l models.Listing) bool {
		return l.OwnerID != nil && *l.OwnerID == ownerID
	}), nil
}

func (r listings) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, listing := range r.s.listings {
		if listing.OwnerID != nil && *listing.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r listings) Search(ctx context.Context, filter string, offset, limit int) ([]models.Listing, int, error) {
	needle := strings.ToLower(filter)
	matched := r.filter(func(l models.Listing) bool {
		return needle == "" || strings.Contains(strings.ToLower(l.Title), needle)
	})

	total := len(matched)
	if offset < 0 || limit < 0 || offset >= total {
		return []models.Listing{}, total, nil
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (r listings) Update(ctx context.Context, listing *models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listings[listing.ListingID]
	if !ok {
		return apperr.NotFound("listing", listing.ListingID)
	}

	listing.UpdatedAt = r.s.now()
	stored.Title = listing.Title
	stored.Description = listing.Description
	stored.ImageURL = cloneString(listing.ImageURL)
	stored.UpdatedAt = listing.UpdatedAt
	r.s.listings[listing.ListingID] = stored
	return nil
}

func (r listings) Delete(ctx context.Context, listingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listings[listingID]; !ok {
		return apperr.NotFound("listing", listingID)
	}
	delete(r.s.listings, listingID)
	return nil
}

// filter returns matching listings newest first, ties by id ascending.
func (r listings) filter(keep func(models.Listing) bool) []models.Listing {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Listing{}
	for _, listing := range r.s.listings {
		if keep(listing) {
			out = append(out, r.withOwner(listing))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ListingID < out[j].ListingID
	})
	return out
}

// withOwner must be called with the read lock held.
func (r listings) withOwner(listing models.Listing) models.Listing {
	out := cloneListing(listing)
	if out.OwnerID == nil {
		return out
	}
	if owner, ok := r.s.accounts[*out.OwnerID]; ok {
		public := owner.Public()
		public.AvatarURL = cloneString(public.AvatarURL)
		out.Owner = &public
	}
	return out
}

type tables struct{}

func (tables) CountTablesDB(ctx context.Context) (int, error) {
	return 2, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneAccount(a models.Account) models.Account {
	a.AvatarURL = cloneString(a.AvatarURL)
	return a
}

func cloneListing(l models.Listing) models.Listing {
	l.ImageURL = cloneString(l.ImageURL)
	l.OwnerID = cloneString(l.OwnerID)
	l.Owner = nil
	return l
}
