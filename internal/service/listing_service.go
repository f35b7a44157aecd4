package service

import (
	"context"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/logging"
	"marketplace/internal/models"
	"marketplace/internal/pagination"
	"marketplace/internal/policy"
	"marketplace/internal/repository"
	"marketplace/internal/storage"
)

type CreateListingRequest struct {
	Title       string
	Description string
}

// UpdateListingRequest leaves nil fields unchanged.
type UpdateListingRequest struct {
	Title       *string
	Description *string
}

type ListingService interface {
	Create(ctx context.Context, actor models.Identity, req CreateListingRequest) (*models.Listing, error)
	Get(ctx context.Context, listingID string) (*models.Listing, error)
	ListMine(ctx context.Context, actor models.Identity) ([]models.Listing, error)
	Search(ctx context.Context, q pagination.Query) (pagination.Page[models.Listing], error)
	Update(ctx context.Context, actor models.Identity, listingID string, req UpdateListingRequest) (*models.Listing, error)
	Delete(ctx context.Context, actor models.Identity, listingID string) error
	SetImage(ctx context.Context, actor models.Identity, listingID string, up storage.Upload) (*models.Listing, error)
	RemoveImage(ctx context.Context, actor models.Identity, listingID string) (*models.Listing, error)
}

type listingService struct {
	listings repository.ListingRepository
	accounts repository.AccountRepository
	quota    *policy.QuotaGuard
	assets   *storage.Assets
	log      logging.Logger
}

func NewListingService(
	listings repository.ListingRepository,
	accounts repository.AccountRepository,
	quota *policy.QuotaGuard,
	assets *storage.Assets,
	log logging.Logger,
) ListingService {
	return &listingService{
		listings: listings,
		accounts: accounts,
		quota:    quota,
		assets:   assets,
		log:      log.With("service", "listing"),
	}
}

func (s *listingService) Create(ctx context.Context, actor models.Identity, req CreateListingRequest) (*models.Listing, error) {
	title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, apperr.Validation("title and description must not be empty")
	}

	if err := s.quota.Check(ctx, actor.SubjectID); err != nil {
		return nil, err
	}

	owner, err := s.accounts.GetByID(ctx, actor.SubjectID)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		Title:       title,
		Description: description,
		OwnerID:     &owner.AccountID,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	public := owner.Public()
	listing.Owner = &public

	s.log.Info(ctx, "listing created", "listingID", listing.ListingID, "ownerID", owner.AccountID)
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	return s.listings.GetByID(ctx, listingID)
}

func (s *listingService) ListMine(ctx context.Context, actor models.Identity) ([]models.Listing, error) {
	return s.listings.ListByOwner(ctx, actor.SubjectID)
}

func (s *listingService) Search(ctx context.Context, q pagination.Query) (pagination.Page[models.Listing], error) {
	return pagination.Paginate(ctx, pagination.SourceFunc[models.Listing](s.listings.Search), q)
}

// owned loads a listing the actor may change.
func (s *listingService) owned(ctx context.Context, actor models.Identity, listingID string) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(listing.OwnerID, actor); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Update(ctx context.Context, actor models.Identity, listingID string, req UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.owned(ctx, actor, listingID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		listing.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, apperr.Validation("description must not be empty")
		}
		listing.Description = description
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes the row first, then the image file best-effort.
func (s *listingService) Delete(ctx context.Context, actor models.Identity, listingID string) error {
	listing, err := s.owned(ctx, actor, listingID)
	if err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, listing.ListingID); err != nil {
		return err
	}
	if listing.ImageURL != nil {
		s.assets.Delete(ctx, *listing.ImageURL)
	}

	s.log.Info(ctx, "listing deleted", "listingID", listing.ListingID, "by", actor.SubjectID)
	return nil
}

func (s *listingService) SetImage(ctx context.Context, actor models.Identity, listingID string, up storage.Upload) (*models.Listing, error) {
	listing, err := s.owned(ctx, actor, listingID)
	if err != nil {
		return nil, err
	}

	previous := listing.ImageURL
	_, err = s.assets.Replace(ctx, storage.ListingImage, up, previous, func(ctx context.Context, ref string) error {
		listing.ImageURL = &ref
		return s.listings.Update(ctx, listing)
	})
	if err != nil {
		listing.ImageURL = previous
		return nil, err
	}
	return listing, nil
}

func (s *listingService) RemoveImage(ctx context.Context, actor models.Identity, listingID string) (*models.Listing, error) {
	listing, err := s.owned(ctx, actor, listingID)
	if err != nil {
		return nil, err
	}
	if listing.ImageURL == nil {
		return listing, nil
	}

	previous := listing.ImageURL
	listing.ImageURL = nil
	if err := s.listings.Update(ctx, listing); err != nil {
		listing.ImageURL = previous
		return nil, err
	}

	s.assets.Delete(ctx, *previous)
	return listing, nil
}
