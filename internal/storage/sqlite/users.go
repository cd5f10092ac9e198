package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, role, blocked, admin_id, group_id, created_at, updated_at`

// nullable converts an empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var adminID, groupID sql.NullString
	var role string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&role,
		&user.Blocked,
		&adminID,
		&groupID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	user.AdminID = adminID.String
	user.GroupID = groupID.String
	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, string(user.Role), user.Blocked,
		nullable(user.AdminID), nullable(user.GroupID),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateUser persists all mutable user fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().Unix()
	res, err := s.q.ExecContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, first_name = ?,
		    last_name = ?, role = ?, blocked = ?, admin_id = ?, group_id = ?,
		    updated_at = ?
		WHERE id = ?`,
		user.Username, user.Email, user.PasswordHash, user.FirstName,
		user.LastName, string(user.Role), user.Blocked,
		nullable(user.AdminID), nullable(user.GroupID),
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s does not exist", user.ID)
	}
	return nil
}

// DeleteUser removes the user row. Dependent cleanup is the caller's job.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// ListUsersByRole retrieves all users holding the given role.
func (s *SQLiteStore) ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return s.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY username`, string(role))
}

// ListUsersByAdmin retrieves users directly managed by the given admin.
func (s *SQLiteStore) ListUsersByAdmin(ctx context.Context, adminID string) ([]*models.User, error) {
	return s.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE admin_id = ? ORDER BY username`, adminID)
}

// ListUsersByGroup retrieves every user assigned to the given group,
// including an admin's own user record when it is assigned.
func (s *SQLiteStore) ListUsersByGroup(ctx context.Context, groupID string) ([]*models.User, error) {
	return s.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE group_id = ? ORDER BY username`, groupID)
}
