package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

const transactionColumns = `id, amount, description, notes, type, txn_date, user_id, category_id, account_id, recurring_id, is_approved, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var amount, txnType string
	var date sql.NullString
	var userID, categoryID, accountID, recurringID sql.NullString
	err := row.Scan(
		&txn.ID,
		&amount,
		&txn.Description,
		&txn.Notes,
		&txnType,
		&date,
		&userID,
		&categoryID,
		&accountID,
		&recurringID,
		&txn.IsApproved,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn.Type = models.TransactionType(txnType)
	txn.UserID = userID.String
	txn.CategoryID = categoryID.String
	txn.AccountID = accountID.String
	txn.RecurringID = recurringID.String
	if txn.Amount, err = decodeAmount(amount); err != nil {
		return nil, err
	}
	if txn.Date, err = decodeDate(date); err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateTransaction inserts a new transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if txn.CreatedAt == 0 {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, encodeAmount(txn.Amount), txn.Description, txn.Notes,
		string(txn.Type), encodeDate(txn.Date), nullable(txn.UserID),
		nullable(txn.CategoryID), nullable(txn.AccountID), nullable(txn.RecurringID),
		txn.IsApproved, txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txn, err := scanTransaction(s.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// UpdateTransaction persists all mutable transaction fields.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	txn.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, description = ?, notes = ?, type = ?, txn_date = ?,
		    category_id = ?, account_id = ?, recurring_id = ?, is_approved = ?,
		    updated_at = ?
		WHERE id = ?`,
		encodeAmount(txn.Amount), txn.Description, txn.Notes,
		string(txn.Type), encodeDate(txn.Date),
		nullable(txn.CategoryID), nullable(txn.AccountID), nullable(txn.RecurringID),
		txn.IsApproved, txn.UpdatedAt, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s does not exist", txn.ID)
	}
	return nil
}

// DeleteTransaction removes a transaction row.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// ListTransactionsForUsers retrieves transactions authored by the given
// users, newest first. A nil slice lists every transaction, including
// entries whose author has been deleted.
func (s *SQLiteStore) ListTransactionsForUsers(ctx context.Context, userIDs []string, filter storage.TransactionFilter) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1 = 1`
	var args []any
	if userIDs != nil {
		if len(userIDs) == 0 {
			return nil, nil
		}
		clause, clauseArgs := inClause(userIDs)
		query += ` AND user_id ` + clause
		args = append(args, clauseArgs...)
	}
	if !filter.From.IsZero() {
		query += ` AND txn_date >= ?`
		args = append(args, filter.From.Format(dayFormat))
	}
	if !filter.To.IsZero() {
		query += ` AND txn_date <= ?`
		args = append(args, filter.To.Format(dayFormat))
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.AccountID != "" {
		query += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	query += ` ORDER BY txn_date DESC, created_at DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// ClearTransactionOwner nulls the author reference on every transaction of
// the given user, preserving the entries for history.
func (s *SQLiteStore) ClearTransactionOwner(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET user_id = NULL WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear transaction owner: %w", err)
	}
	return nil
}
