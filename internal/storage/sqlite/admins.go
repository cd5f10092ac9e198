package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/models"
)

const adminColumns = `id, username, email, owner_user_id, is_active, created_at`

func scanAdmin(row interface{ Scan(...any) error }) (*models.Admin, error) {
	admin := &models.Admin{}
	var ownerID sql.NullString
	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&ownerID,
		&admin.IsActive,
		&admin.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	admin.OwnerUserID = ownerID.String
	return admin, nil
}

// CreateAdmin inserts a new admin record.
func (s *SQLiteStore) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if admin.CreatedAt == 0 {
		admin.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO admins (`+adminColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.Username, admin.Email,
		nullable(admin.OwnerUserID), admin.IsActive, admin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetAdmin retrieves an admin by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := scanAdmin(s.q.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// GetAdminByUsernameOrEmail retrieves the admin record linked to an
// ADMIN-role user by credential match. Returns (nil, nil) when no record has
// been provisioned yet.
func (s *SQLiteStore) GetAdminByUsernameOrEmail(ctx context.Context, username, email string) (*models.Admin, error) {
	admin, err := scanAdmin(s.q.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = ? OR email = ?`, username, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by credentials: %w", err)
	}
	return admin, nil
}

// DeleteAdmin removes an admin record.
func (s *SQLiteStore) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return nil
}
