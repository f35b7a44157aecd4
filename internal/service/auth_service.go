package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"marketplace/internal/apperr"
	"marketplace/internal/logging"
	"marketplace/internal/models"
	"marketplace/internal/repository"
	"marketplace/internal/storage"
	"marketplace/internal/token"
)

type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	AvatarURL   *string
}

// Session is a freshly authenticated account with its bearer token.
type Session struct {
	Account *models.Account
	Token   string
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Authenticate(tokenString string) (models.Identity, error)
}

type authService struct {
	accounts repository.AccountRepository
	issuer   *token.Issuer
	assets   *storage.Assets
	log      logging.Logger
	cost     int
}

func NewAuthService(accounts repository.AccountRepository, issuer *token.Issuer, assets *storage.Assets, log logging.Logger) AuthService {
	return &authService{
		accounts: accounts,
		issuer:   issuer,
		assets:   assets,
		log:      log.With("service", "auth"),
		cost:     bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return nil, apperr.Validation("email, password and displayName are required")
	}
	if err := checkAvatarURL(s.assets, req.AvatarURL, nil); err != nil {
		return nil, err
	}

	_, err := s.accounts.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("email is already registered")
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		AvatarURL:    req.AvatarURL,
		Role:         models.RoleStandard,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	signed, err := s.issuer.Issue(account.AccountID, account.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account registered", "accountID", account.AccountID)
	return &Session{Account: account, Token: signed}, nil
}

// Login reports unknown emails and wrong passwords the same way.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, fmt.Errorf("look up email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}

	signed, err := s.issuer.Issue(account.AccountID, account.Role)
	if err != nil {
		return nil, err
	}

	return &Session{Account: account, Token: signed}, nil
}

func (s *authService) Authenticate(tokenString string) (models.Identity, error) {
	return s.issuer.Verify(tokenString)
}
