package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edufunkids/internal/database"
	"edufunkids/internal/models"
)

// AccountRepository handles database operations for accounts and password resets
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, password_hash, oauth_provider, oauth_subject, is_demo, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.OAuthProvider,
		&account.OAuthSubject,
		&account.IsDemo,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

// Create inserts a new account. CreatedAt and UpdatedAt are set when zero.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.OAuthProvider,
		account.OAuthSubject,
		account.IsDemo,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByEmail retrieves an account by email address, or nil if none exists
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

// GetByID retrieves an account by ID, or nil if none exists
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

// GetByOAuth retrieves an account by OAuth provider and subject, or nil if none exists
func (r *AccountRepository) GetByOAuth(ctx context.Context, provider, subject string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE oauth_provider = ? AND oauth_subject = ?`, provider, subject)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// UpdatePassword replaces an account's password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// LinkOAuthProvider links an existing account to an OAuth provider
func (r *AccountRepository) LinkOAuthProvider(ctx context.Context, id, provider, subject string) error {
	query := `
		UPDATE accounts
		SET oauth_provider = ?, oauth_subject = ?, updated_at = ?
		WHERE id = ? AND oauth_provider = ''
	`
	result, err := r.db.ExecContext(ctx, query, provider, subject, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}

// Delete removes an account and, through the foreign key, its reset tokens
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// List retrieves all accounts, oldest first
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// CreatePasswordReset stores a password reset token
func (r *AccountRepository) CreatePasswordReset(ctx context.Context, token *models.PasswordResetToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO password_resets (token, account_id, expires_at, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, token.Token, token.AccountID, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

// GetPasswordReset retrieves a reset token, or nil if it does not exist
func (r *AccountRepository) GetPasswordReset(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `SELECT token, account_id, expires_at, created_at FROM password_resets WHERE token = ?`
	reset := &models.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&reset.Token, &reset.AccountID, &reset.ExpiresAt, &reset.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password reset: %w", err)
	}
	return reset, nil
}

// DeletePasswordReset removes a used reset token
func (r *AccountRepository) DeletePasswordReset(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM password_resets WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete password reset: %w", err)
	}
	return nil
}

// DeleteExpiredPasswordResets removes every reset token that expired before now
func (r *AccountRepository) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM password_resets WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired password resets: %w", err)
	}
	return result.RowsAffected()
}
