package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"marketplace/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, accountID string) error
}

// ListingRepository returns listings newest first with ties broken by id.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, listingID string) (*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Search(ctx context.Context, filter string, offset, limit int) ([]models.Listing, int, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, listingID string) error
}

// TablesRepository reports on the schema for health checks.
type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
}

type Repository struct {
	Account AccountRepository
	Listing ListingRepository
	Tables  TablesRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Account: NewAccountRepository(db),
		Listing: NewListingRepository(db),
		Tables:  NewTablesRepository(db),
	}
}

const (
	pqUniqueViolation   = "23505"
	pqInvalidTextFormat = "22P02"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
