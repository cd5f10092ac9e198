package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const groupColumns = `id, name, description, admin_id, created_at`

func scanGroup(row interface{ Scan(...any) error }) (*models.UserGroup, error) {
	group := &models.UserGroup{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.AdminID,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// CreateGroup inserts a new user group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.UserGroup) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO user_groups (`+groupColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Description, group.AdminID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.UserGroup, error) {
	group, err := scanGroup(s.q.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM user_groups WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (s *SQLiteStore) listGroups(ctx context.Context, query string, args ...any) ([]*models.UserGroup, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.UserGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// ListGroups retrieves every user group.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.UserGroup, error) {
	return s.listGroups(ctx, `SELECT `+groupColumns+` FROM user_groups ORDER BY name`)
}

// ListGroupsByAdmin retrieves the groups owned by the given admin.
func (s *SQLiteStore) ListGroupsByAdmin(ctx context.Context, adminID string) ([]*models.UserGroup, error) {
	return s.listGroups(ctx,
		`SELECT `+groupColumns+` FROM user_groups WHERE admin_id = ? ORDER BY name`, adminID)
}
