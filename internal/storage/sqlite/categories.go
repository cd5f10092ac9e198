package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const categoryColumns = `id, name, description, color, is_default, user_id, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	category := &models.Category{}
	var userID sql.NullString
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Color,
		&category.IsDefault,
		&userID,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	category.UserID = userID.String
	return category, nil
}

// CreateCategory inserts a new category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if category.CreatedAt == 0 {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Description, category.Color,
		category.IsDefault, nullable(category.UserID),
		category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := scanCategory(s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// UpdateCategory persists all mutable category fields.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		category.Name, category.Description, category.Color,
		category.UpdatedAt, category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s does not exist", category.ID)
	}
	return nil
}

// DeleteCategory removes a category row.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listCategories(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// ListDefaultCategories retrieves the shared default categories.
func (s *SQLiteStore) ListDefaultCategories(ctx context.Context) ([]*models.Category, error) {
	return s.listCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_default = 1 ORDER BY name`)
}

// ListCategoriesForUsers retrieves non-default categories owned by the given
// users. A nil slice lists every category, defaults included.
func (s *SQLiteStore) ListCategoriesForUsers(ctx context.Context, userIDs []string) ([]*models.Category, error) {
	if userIDs == nil {
		return s.listCategories(ctx,
			`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	}
	if len(userIDs) == 0 {
		return nil, nil
	}
	clause, args := inClause(userIDs)
	return s.listCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id `+clause+` ORDER BY name`, args...)
}

// CategoryNameExists reports whether the name collides, case-insensitively,
// with a default category or one of the user's own.
func (s *SQLiteStore) CategoryNameExists(ctx context.Context, name, userID string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM categories
		WHERE name = ? COLLATE NOCASE AND (is_default = 1 OR user_id = ?)`,
		name, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

// DeleteCategoriesByUser removes all non-default categories owned by the user.
func (s *SQLiteStore) DeleteCategoriesByUser(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND is_default = 0`, userID); err != nil {
		return fmt.Errorf("failed to delete categories: %w", err)
	}
	return nil
}
