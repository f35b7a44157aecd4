package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"marketplace/internal/config"
	"marketplace/internal/database"
	handlers "marketplace/internal/handler"
	"marketplace/internal/logging"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/ratelimit"
	"marketplace/internal/repository"
	"marketplace/internal/repository/memstore"
	"marketplace/internal/service"
	"marketplace/internal/storage"
	"marketplace/internal/token"
)

// janitorPeriod is how often idle in-memory throttle entries are pruned.
const janitorPeriod = time.Minute

// App is the assembled process: an HTTP handler plus what must be released on exit.
type App struct {
	Handler http.Handler
	closers []func() error
}

// New builds every component selected by cfg. Background work stops when ctx is done.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	a := &App{}

	repo, err := a.repository(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	blob, err := newBlob(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	assets := storage.NewAssets(blob, cfg.PublicBaseURL, cfg.MaxUploadSize, log)

	issuer, err := token.NewIssuer(cfg.JWTSecretKey, cfg.AccessTokenDuration)
	if err != nil {
		a.Close()
		return nil, err
	}

	limiter, err := a.limiter(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	services := service.NewService(repo, cfg, issuer, assets, log)
	h := handlers.NewHandlers(services, assets, cfg, log)

	limitLog := log.With("component", "ratelimit")
	router := handlers.NewRouter(h, handlers.Guards{
		Auth:          middleware.AuthMiddleware(services.Auth),
		Admin:         middleware.RoleMiddleware(models.RoleAdmin),
		RegisterLimit: middleware.RateLimit(limiter, "register", cfg.RateLimit.RegisterInterval, limitLog),
		LoginLimit:    middleware.RateLimit(limiter, "login", cfg.RateLimit.LoginInterval, limitLog),
	})

	a.Handler = middleware.Chain(
		router,
		middleware.RecoverMiddleware(log),
		middleware.LoggingMiddleware(log),
		middleware.CORSMiddleware(cfg.CORSOrigin),
	)
	return a, nil
}

func (a *App) repository(ctx context.Context, cfg *config.Config, log logging.Logger) (*repository.Repository, error) {
	if cfg.DB.Driver == "memory" {
		log.Warn(ctx, "using in-memory datastore, data is lost on exit")
		return memstore.New().Repository(), nil
	}

	db, err := database.ConnectDB(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.CloseDB)
	return repository.NewRepository(db.DB), nil
}

func newBlob(ctx context.Context, cfg *config.Config) (storage.Blob, error) {
	if cfg.Storage.Driver == "minio" {
		client, err := storage.NewMinIOClient(ctx, cfg.Storage.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		return client, nil
	}

	disk, err := storage.NewDisk(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init upload dir: %w", err)
	}
	return disk, nil
}

func (a *App) limiter(ctx context.Context, cfg *config.Config, log logging.Logger) (ratelimit.Limiter, error) {
	if cfg.RateLimit.Store == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)

		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Info(ctx, "rate limiting through redis", "addr", cfg.RateLimit.Redis.Addr)
		return ratelimit.NewRedisLimiter(rdb, ""), nil
	}

	limiter := ratelimit.NewMemoryLimiter()
	maxAge := 2 * max(cfg.RateLimit.RegisterInterval, cfg.RateLimit.LoginInterval)
	go limiter.RunJanitor(ctx, janitorPeriod, maxAge)
	return limiter, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
