package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateAccount inserts a new account into the database.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by username.
func (s *SQLiteStore) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT username, email, password_hash, created_at
		FROM accounts
		WHERE username = ?
	`

	account := &models.Account{}
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
