package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const budgetColumns = `id, user_id, category_id, amount, start_date, end_date, alert_threshold, is_active, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	budget := &models.Budget{}
	var categoryID sql.NullString
	var amount string
	var start, end sql.NullString
	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&categoryID,
		&amount,
		&start,
		&end,
		&budget.AlertThreshold,
		&budget.IsActive,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	budget.CategoryID = categoryID.String
	if budget.Amount, err = decodeAmount(amount); err != nil {
		return nil, err
	}
	if budget.StartDate, err = decodeDate(start); err != nil {
		return nil, err
	}
	if budget.EndDate, err = decodeDate(end); err != nil {
		return nil, err
	}
	return budget, nil
}

// CreateBudget inserts a new budget.
func (s *SQLiteStore) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if budget.CreatedAt == 0 {
		budget.CreatedAt = now
	}
	budget.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.UserID, nullable(budget.CategoryID),
		encodeAmount(budget.Amount), encodeDate(budget.StartDate), encodeDate(budget.EndDate),
		budget.AlertThreshold, budget.IsActive,
		budget.CreatedAt, budget.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetBudget retrieves a budget by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetBudget(ctx context.Context, id string) (*models.Budget, error) {
	budget, err := scanBudget(s.q.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

// UpdateBudget persists all mutable budget fields.
func (s *SQLiteStore) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	budget.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx, `
		UPDATE budgets
		SET category_id = ?, amount = ?, start_date = ?, end_date = ?,
		    alert_threshold = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		nullable(budget.CategoryID), encodeAmount(budget.Amount),
		encodeDate(budget.StartDate), encodeDate(budget.EndDate),
		budget.AlertThreshold, budget.IsActive,
		budget.UpdatedAt, budget.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s does not exist", budget.ID)
	}
	return nil
}

// ListBudgetsForUsers retrieves the active budgets of the given users,
// newest start date first. A nil slice lists every active budget.
func (s *SQLiteStore) ListBudgetsForUsers(ctx context.Context, userIDs []string) ([]*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE is_active = 1`
	var args []any
	if userIDs != nil {
		if len(userIDs) == 0 {
			return nil, nil
		}
		clause, clauseArgs := inClause(userIDs)
		query += ` AND user_id ` + clause
		args = clauseArgs
	}
	query += ` ORDER BY start_date DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudgetsByUser removes all budgets owned by the given user.
func (s *SQLiteStore) DeleteBudgetsByUser(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete budgets: %w", err)
	}
	return nil
}
