package service

import (
	"context"
	"fmt"

	"marketplace/internal/apperr"
	"marketplace/internal/logging"
	"marketplace/internal/models"
	"marketplace/internal/policy"
	"marketplace/internal/repository"
	"marketplace/internal/storage"
)

type AccountService interface {
	Me(ctx context.Context, actor models.Identity) (*models.Account, error)
	Get(ctx context.Context, actor models.Identity, accountID string) (*models.Account, error)
	List(ctx context.Context, actor models.Identity) ([]models.Account, error)
	UpdateAvatarURL(ctx context.Context, actor models.Identity, accountID string, avatarURL *string) (*models.Account, error)
	UploadAvatar(ctx context.Context, actor models.Identity, accountID string, up storage.Upload) (*models.Account, error)
	Delete(ctx context.Context, actor models.Identity, accountID string) error
}

type accountService struct {
	accounts repository.AccountRepository
	assets   *storage.Assets
	log      logging.Logger
}

func NewAccountService(accounts repository.AccountRepository, assets *storage.Assets, log logging.Logger) AccountService {
	return &accountService{
		accounts: accounts,
		assets:   assets,
		log:      log.With("service", "account"),
	}
}

func (s *accountService) Me(ctx context.Context, actor models.Identity) (*models.Account, error) {
	return s.accounts.GetByID(ctx, actor.SubjectID)
}

func (s *accountService) Get(ctx context.Context, actor models.Identity, accountID string) (*models.Account, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, accountID)
}

func (s *accountService) List(ctx context.Context, actor models.Identity) ([]models.Account, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx)
}

// owned loads an account the actor may change.
func (s *accountService) owned(ctx context.Context, actor models.Identity, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(&account.AccountID, actor); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAvatarURL saves the new reference first, then drops the old managed file.
func (s *accountService) UpdateAvatarURL(ctx context.Context, actor models.Identity, accountID string, avatarURL *string) (*models.Account, error) {
	account, err := s.owned(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}

	if err := checkAvatarURL(s.assets, avatarURL, account.AvatarURL); err != nil {
		return nil, err
	}

	previous := account.AvatarURL
	account.AvatarURL = avatarURL
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	if previous != nil && (avatarURL == nil || *previous != *avatarURL) {
		s.assets.Delete(ctx, *previous)
	}
	return account, nil
}

func (s *accountService) UploadAvatar(ctx context.Context, actor models.Identity, accountID string, up storage.Upload) (*models.Account, error) {
	account, err := s.owned(ctx, actor, accountID)
	if err != nil {
		return nil, err
	}

	previous := account.AvatarURL
	_, err = s.assets.Replace(ctx, storage.Avatar, up, previous, func(ctx context.Context, ref string) error {
		account.AvatarURL = &ref
		return s.accounts.Update(ctx, account)
	})
	if err != nil {
		account.AvatarURL = previous
		return nil, err
	}

	s.log.Info(ctx, "avatar replaced", "accountID", account.AccountID)
	return account, nil
}

// checkAvatarURL refuses uploads references that the account does not already
// hold. Managed avatars only come from UploadAvatar, so a caller cannot point
// at another entity's file and have it removed later.
func checkAvatarURL(assets *storage.Assets, avatarURL, current *string) error {
	if avatarURL == nil {
		return nil
	}
	if _, managed := assets.ManagedName(*avatarURL); !managed {
		return nil
	}
	if current != nil && *current == *avatarURL {
		return nil
	}
	return apperr.Validation("avatarUrl may not point at an uploaded file, use the avatar upload instead")
}

// Delete removes the account; its listings stay behind without an owner.
func (s *accountService) Delete(ctx context.Context, actor models.Identity, accountID string) error {
	account, err := s.owned(ctx, actor, accountID)
	if err != nil {
		return err
	}

	if err := s.accounts.Delete(ctx, account.AccountID); err != nil {
		return err
	}
	if account.AvatarURL != nil {
		s.assets.Delete(ctx, *account.AvatarURL)
	}

	s.log.Info(ctx, "account deleted", "accountID", account.AccountID, "by", actor.SubjectID)
	return nil
}
