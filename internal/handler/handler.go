package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"marketplace/internal/config"
	"marketplace/internal/logging"
	"marketplace/internal/service"
	"marketplace/internal/storage"
)

type Handlers struct {
	AuthService    service.AuthService
	AccountService service.AccountService
	ListingService service.ListingService
	TablesService  service.TablesService
	Assets         *storage.Assets
	Cfg            *config.Config
	Log            logging.Logger
	Validate       *validator.Validate
}

func NewHandlers(services *service.Service, assets *storage.Assets, cfg *config.Config, log logging.Logger) *Handlers {
	return &Handlers{
		AuthService:    services.Auth,
		AccountService: services.Account,
		ListingService: services.Listing,
		TablesService:  services.Tables,
		Assets:         assets,
		Cfg:            cfg,
		Log:            log.With("component", "http"),
		Validate:       NewValidator(),
	}
}

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
