package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

var listingRowColumns = []string{
	"listing_id", "title", "description", "image_url", "owner_id", "created_at", "updated_at",
	"owner_display_name", "owner_avatar_url",
}

func TestListingRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepository(db)
	ownerID := uuid.New().String()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings (listing_id, title, description, image_url, owner_id, created_at, updated_at)")).
		WithArgs(sqlmock.AnyArg(), "Road bike", "Barely used", nil, ownerID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	listing := &models.Listing{Title: "Road bike", Description: "Barely used", OwnerID: &ownerID}
	require.NoError(t, repo.Create(context.Background(), listing))

	assert.NotEmpty(t, listing.ListingID)
	assert.Equal(t, listing.CreatedAt, listing.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID(t *testing.T) {
	query := regexp.QuoteMeta("LEFT JOIN accounts a ON a.account_id = l.owner_id WHERE l.listing_id = $1")
	listingID := uuid.New().String()
	ownerID := uuid.New().String()
	now := time.Now().UTC()

	t.Run("with owner", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		rows := sqlmock.NewRows(listingRowColumns).
			AddRow(listingID, "Lamp", "Brass lamp", nil, ownerID, now, now, "Seller", "http://localhost:8080/uploads/avatar-1-x.png")
		mock.ExpectQuery(query).WithArgs(listingID).WillReturnRows(rows)

		listing, err := repo.GetByID(context.Background(), listingID)
		require.NoError(t, err)
		require.NotNil(t, listing.Owner)
		assert.Equal(t, ownerID, listing.Owner.AccountID)
		assert.Equal(t, "Seller", listing.Owner.DisplayName)
		require.NotNil(t, listing.Owner.AvatarURL)
		assert.Nil(t, listing.ImageURL)
	})

	t.Run("orphaned", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		rows := sqlmock.NewRows(listingRowColumns).
			AddRow(listingID, "Lamp", "Brass lamp", nil, nil, now, now, nil, nil)
		mock.ExpectQuery(query).WithArgs(listingID).WillReturnRows(rows)

		listing, err := repo.GetByID(context.Background(), listingID)
		require.NoError(t, err)
		assert.Nil(t, listing.OwnerID)
		assert.Nil(t, listing.Owner)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		mock.ExpectQuery(query).WithArgs(listingID).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), listingID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestListingRepository_CountByOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepository(db)
	ownerID := uuid.New().String()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM listings WHERE owner_id = $1")).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestListingRepository_ListByOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepository(db)
	ownerID := uuid.New().String()
	now := time.Now().UTC()

	rows := sqlmock.NewRows(listingRowColumns).
		AddRow(uuid.New().String(), "B", "second", nil, ownerID, now, now, "Seller", nil).
		AddRow(uuid.New().String(), "A", "first", nil, ownerID, now.Add(-time.Hour), now, "Seller", nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.owner_id = $1 ORDER BY l.created_at DESC, l.listing_id ASC")).
		WithArgs(ownerID).
		WillReturnRows(rows)

	listings, err := repo.ListByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "B", listings[0].Title)
	assert.Nil(t, listings[0].Owner.AvatarURL)
}

func TestListingRepository_Search(t *testing.T) {
	now := time.Now().UTC()

	t.Run("without filter", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM listings l")).
			WithArgs().
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

		rows := sqlmock.NewRows(listingRowColumns)
		for i := 0; i < 5; i++ {
			rows.AddRow(uuid.New().String(), fmt.Sprintf("Item %d", i), "d", nil, nil, now, now, nil, nil)
		}
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY l.created_at DESC, l.listing_id ASC LIMIT $1 OFFSET $2")).
			WithArgs(20, 20).
			WillReturnRows(rows)

		listings, total, err := repo.Search(context.Background(), "", 20, 20)
		require.NoError(t, err)
		assert.Equal(t, 25, total)
		assert.Len(t, listings, 5)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filter is escaped and case-insensitive", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM listings l WHERE l.title ILIKE $1")).
			WithArgs(`%50\% off\_sale%`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE l.title ILIKE $1 ORDER BY l.created_at DESC, l.listing_id ASC LIMIT $2 OFFSET $3")).
			WithArgs(`%50\% off\_sale%`, 20, 0).
			WillReturnRows(sqlmock.NewRows(listingRowColumns))

		listings, total, err := repo.Search(context.Background(), "50% off_sale", 0, 20)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, listings)
		assert.Empty(t, listings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListingRepository_Update(t *testing.T) {
	update := regexp.QuoteMeta("UPDATE listings SET title = ?, description = ?, image_url = ?, updated_at = ? WHERE listing_id = ?")
	image := "http://localhost:8080/uploads/listing-1-a.png"
	listing := &models.Listing{ListingID: uuid.New().String(), Title: "T", Description: "D", ImageURL: &image}

	t.Run("updated", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		mock.ExpectExec(update).
			WithArgs("T", "D", image, sqlmock.AnyArg(), listing.ListingID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), listing))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewListingRepository(db)

		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Update(context.Background(), listing), apperr.ErrNotFound)
	})
}

func TestListingRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepository(db)
	listingID := uuid.New().String()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM listings WHERE listing_id = $1")).
		WithArgs(listingID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), listingID), apperr.ErrNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
