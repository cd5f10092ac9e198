package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const accountColumns = `id, name, description, type, user_id, balance, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	account := &models.Account{}
	var balance string
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Description,
		&account.Type,
		&account.UserID,
		&balance,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Balance, err = decodeAmount(balance)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if account.CreatedAt == 0 {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Description, account.Type,
		account.UserID, encodeAmount(account.Balance), account.IsActive,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := scanAccount(s.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// UpdateAccount persists all mutable account fields, including the balance.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, description = ?, type = ?, balance = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		account.Name, account.Description, account.Type,
		encodeAmount(account.Balance), account.IsActive,
		account.UpdatedAt, account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s does not exist", account.ID)
	}
	return nil
}

// ListAccountsForUsers retrieves the active accounts of the given users,
// ordered by name. A nil slice lists every active account.
func (s *SQLiteStore) ListAccountsForUsers(ctx context.Context, userIDs []string) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active = 1`
	var args []any
	if userIDs != nil {
		if len(userIDs) == 0 {
			return nil, nil
		}
		clause, clauseArgs := inClause(userIDs)
		query += ` AND user_id ` + clause
		args = clauseArgs
	}
	query += ` ORDER BY name`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccountsByUser removes all accounts owned by the given user.
func (s *SQLiteStore) DeleteAccountsByUser(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}
	return nil
}
