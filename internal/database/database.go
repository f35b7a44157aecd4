package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"marketplace/internal/config"
	"marketplace/internal/database/migrations"
	"marketplace/internal/logging"
)

type DB struct {
	*sqlx.DB
}

// gooseUp is swapped out in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

func ConnectDB(ctx context.Context, cfg config.DB, log logging.Logger) (*DB, error) {
	log.Info(ctx, "connecting to postgres", "host", cfg.DbHOST, "dbname", cfg.DbNAME, "url", cfg.URL != "")

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	wrapped := &DB{db}
	if err := wrapped.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := wrapped.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres health check: %w", err)
	}

	log.Info(ctx, "postgres ready")
	return wrapped, nil
}

// RunMigrations applies the embedded goose migrations.
func (db *DB) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := gooseUp(ctx, db.DB.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return errors.New("database connection is not initialized")
	}
	return db.PingContext(ctx)
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}
