package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

type listingRepository struct {
	db *sqlx.DB
}

// listingRow carries the owner's public fields from the join.
type listingRow struct {
	models.Listing
	OwnerDisplayName sql.NullString `db:"owner_display_name"`
	OwnerAvatarURL   sql.NullString `db:"owner_avatar_url"`
}

func (r listingRow) toModel() models.Listing {
	listing := r.Listing
	if listing.OwnerID != nil && r.OwnerDisplayName.Valid {
		owner := &models.PublicAccount{
			AccountID:   *listing.OwnerID,
			DisplayName: r.OwnerDisplayName.String,
		}
		if r.OwnerAvatarURL.Valid {
			avatar := r.OwnerAvatarURL.String
			owner.AvatarURL = &avatar
		}
		listing.Owner = owner
	}
	return listing
}

const selectListings = `
		SELECT l.listing_id, l.title, l.description, l.image_url, l.owner_id, l.created_at, l.updated_at,
			a.display_name AS owner_display_name, a.avatar_url AS owner_avatar_url
		FROM listings l
		LEFT JOIN accounts a ON a.account_id = l.owner_id`

const listingOrder = ` ORDER BY l.created_at DESC, l.listing_id ASC`

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	now := time.Now().UTC()
	listing.ListingID = uuid.New().String()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	query := `
		INSERT INTO listings (listing_id, title, description, image_url, owner_id, created_at, updated_at)
		VALUES (:listing_id, :title, :description, :image_url, :owner_id, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, listing)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	var row listingRow

	query := selectListings + ` WHERE l.listing_id = $1`

	err := r.db.GetContext(ctx, &row, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextFormat {
			return nil, apperr.NotFound("listing", listingID)
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}

	listing := row.toModel()
	return &listing, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	var rows []listingRow

	query := selectListings + ` WHERE l.owner_id = $1` + listingOrder

	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list listings by owner: %w", err)
	}

	return toListings(rows), nil
}

func (r *listingRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM listings WHERE owner_id = $1`

	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("count listings by owner: %w", err)
	}

	return count, nil
}

// Search matches filter as a case-insensitive substring of the title.
func (r *listingRepository) Search(ctx context.Context, filter string, offset, limit int) ([]models.Listing, int, error) {
	var (
		where string
		args  []interface{}
	)
	if filter != "" {
		where = ` WHERE l.title ILIKE $1`
		args = append(args, "%"+escapeLike(filter)+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM listings l` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	var rows []listingRow
	query := selectListings + where + listingOrder +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	if err := r.db.SelectContext(ctx, &rows, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}

	return toListings(rows), total, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE listings
		SET title = :title, description = :description, image_url = :image_url, updated_at = :updated_at
		WHERE listing_id = :listing_id
	`

	result, err := r.db.NamedExecContext(ctx, query, listing)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update listing rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("listing", listing.ListingID)
	}

	return nil
}

func (r *listingRepository) Delete(ctx context.Context, listingID string) error {
	query := `DELETE FROM listings WHERE listing_id = $1`

	result, err := r.db.ExecContext(ctx, query, listingID)
	if err != nil {
		if pqCode(err) == pqInvalidTextFormat {
			return apperr.NotFound("listing", listingID)
		}
		return fmt.Errorf("delete listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("listing", listingID)
	}

	return nil
}

func toListings(rows []listingRow) []models.Listing {
	listings := make([]models.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, row.toModel())
	}
	return listings
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
