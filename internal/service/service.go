package service

import (
	"marketplace/internal/config"
	"marketplace/internal/logging"
	"marketplace/internal/policy"
	"marketplace/internal/repository"
	"marketplace/internal/storage"
	"marketplace/internal/token"
)

type Service struct {
	Auth    AuthService
	Account AccountService
	Listing ListingService
	Tables  TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, issuer *token.Issuer, assets *storage.Assets, log logging.Logger) *Service {
	quota := policy.NewQuotaGuard(rep.Listing, cfg.MaxListingsPerAccount)

	return &Service{
		Auth:    NewAuthService(rep.Account, issuer, assets, log),
		Account: NewAccountService(rep.Account, assets, log),
		Listing: NewListingService(rep.Listing, rep.Account, quota, assets, log),
		Tables:  NewTablesService(rep.Tables),
	}
}
