package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

type accountRepository struct {
	db *sqlx.DB
}

const accountColumns = `account_id, email, password_hash, display_name, avatar_url, role, created_at, updated_at`

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create assigns the id and timestamps. A taken email is ErrConflict.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	account.AccountID = uuid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Role == "" {
		account.Role = models.RoleStandard
	}

	query := `
		INSERT INTO accounts (account_id, email, password_hash, display_name, avatar_url, role, created_at, updated_at)
		VALUES (:account_id, :email, :password_hash, :display_name, :avatar_url, :role, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return apperr.Conflict("email is already registered")
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	var account models.Account

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`

	err := r.db.GetContext(ctx, &account, query, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextFormat {
			return nil, apperr.NotFound("account", accountID)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	err := r.db.GetContext(ctx, &account, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("account", email)
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) List(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC, account_id ASC`

	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE accounts
		SET email = :email, display_name = :display_name, avatar_url = :avatar_url, role = :role, updated_at = :updated_at
		WHERE account_id = :account_id
	`

	result, err := r.db.NamedExecContext(ctx, query, account)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return apperr.Conflict("email is already registered")
		}
		return fmt.Errorf("update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("account", account.AccountID)
	}

	return nil
}

// Delete leaves the account's listings in place with a cleared owner.
func (r *accountRepository) Delete(ctx context.Context, accountID string) error {
	query := `DELETE FROM accounts WHERE account_id = $1`

	result, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		if pqCode(err) == pqInvalidTextFormat {
			return apperr.NotFound("account", accountID)
		}
		return fmt.Errorf("delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("account", accountID)
	}

	return nil
}
