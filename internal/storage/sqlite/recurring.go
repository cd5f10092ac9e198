package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const recurringColumns = `id, description, notes, amount, type, recurrence, user_id, category_id, account_id, start_date, next_due_date, end_date, is_active, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (*models.RecurringTransaction, error) {
	rec := &models.RecurringTransaction{}
	var amount, txnType, recurrence string
	var start, due, end sql.NullString
	var categoryID, accountID sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.Description,
		&rec.Notes,
		&amount,
		&txnType,
		&recurrence,
		&rec.UserID,
		&categoryID,
		&accountID,
		&start,
		&due,
		&end,
		&rec.IsActive,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Type = models.TransactionType(txnType)
	rec.Recurrence = models.RecurrenceType(recurrence)
	rec.CategoryID = categoryID.String
	rec.AccountID = accountID.String
	if rec.Amount, err = decodeAmount(amount); err != nil {
		return nil, err
	}
	if rec.StartDate, err = decodeDate(start); err != nil {
		return nil, err
	}
	if rec.NextDueDate, err = decodeDate(due); err != nil {
		return nil, err
	}
	if rec.EndDate, err = decodeDate(end); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateRecurring inserts a new recurring schedule.
func (s *SQLiteStore) CreateRecurring(ctx context.Context, rec *models.RecurringTransaction) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO recurring_transactions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Description, rec.Notes, encodeAmount(rec.Amount),
		string(rec.Type), string(rec.Recurrence),
		rec.UserID, nullable(rec.CategoryID), nullable(rec.AccountID),
		encodeDate(rec.StartDate), encodeDate(rec.NextDueDate), encodeDate(rec.EndDate),
		rec.IsActive, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	return nil
}

// GetRecurring retrieves a recurring schedule by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetRecurring(ctx context.Context, id string) (*models.RecurringTransaction, error) {
	rec, err := scanRecurring(s.q.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring transaction: %w", err)
	}
	return rec, nil
}

// UpdateRecurring persists all mutable schedule fields.
func (s *SQLiteStore) UpdateRecurring(ctx context.Context, rec *models.RecurringTransaction) error {
	rec.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET description = ?, notes = ?, amount = ?, type = ?, recurrence = ?,
		    category_id = ?, account_id = ?, start_date = ?, next_due_date = ?,
		    end_date = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		rec.Description, rec.Notes, encodeAmount(rec.Amount),
		string(rec.Type), string(rec.Recurrence),
		nullable(rec.CategoryID), nullable(rec.AccountID),
		encodeDate(rec.StartDate), encodeDate(rec.NextDueDate), encodeDate(rec.EndDate),
		rec.IsActive, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring transaction %s does not exist", rec.ID)
	}
	return nil
}

// DeleteRecurring removes a recurring schedule.
func (s *SQLiteStore) DeleteRecurring(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM recurring_transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listRecurring(ctx context.Context, query string, args ...any) ([]*models.RecurringTransaction, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring transactions: %w", err)
	}
	defer rows.Close()

	var recs []*models.RecurringTransaction
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring transactions: %w", err)
	}
	return recs, nil
}

// ListRecurringForUsers retrieves schedules owned by the given users,
// soonest due first. A nil slice lists every schedule.
func (s *SQLiteStore) ListRecurringForUsers(ctx context.Context, userIDs []string, activeOnly bool) ([]*models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE 1 = 1`
	var args []any
	if userIDs != nil {
		if len(userIDs) == 0 {
			return nil, nil
		}
		clause, clauseArgs := inClause(userIDs)
		query += ` AND user_id ` + clause
		args = clauseArgs
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY next_due_date ASC`
	return s.listRecurring(ctx, query, args...)
}

// ListRecurringOwners retrieves the distinct IDs of users owning at least
// one recurring schedule.
func (s *SQLiteStore) ListRecurringOwners(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM recurring_transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring owners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner ids: %w", err)
	}
	return ids, nil
}

// ListDueRecurring retrieves the user's active schedules due on or before
// today whose end date, if set, has not passed.
func (s *SQLiteStore) ListDueRecurring(ctx context.Context, userID string, today time.Time) ([]*models.RecurringTransaction, error) {
	day := today.Format(dayFormat)
	return s.listRecurring(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE user_id = ? AND is_active = 1 AND next_due_date <= ?
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY next_due_date ASC`,
		userID, day, day)
}

// DeleteRecurringByUser removes all schedules owned by the given user.
func (s *SQLiteStore) DeleteRecurringByUser(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM recurring_transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete recurring transactions: %w", err)
	}
	return nil
}
