package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkrish/fintrack/internal/models"
)

// CreateResetToken inserts a new password reset token.
func (s *SQLiteStore) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if token.CreatedAt == 0 {
		token.CreatedAt = time.Now().Unix()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		token.Token, token.UserID, token.ExpiresAt, token.Used, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetResetToken retrieves a token by its value. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := s.q.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, used, created_at
		FROM password_reset_tokens WHERE token = ?`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return t, nil
}

// MarkResetTokenUsed consumes a token so it can never be redeemed twice.
func (s *SQLiteStore) MarkResetTokenUsed(ctx context.Context, token string) error {
	if _, err := s.q.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}

// DeleteResetTokensByUser removes all tokens issued for the given user.
func (s *SQLiteStore) DeleteResetTokensByUser(ctx context.Context, userID string) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredResetTokens removes tokens past their expiry.
func (s *SQLiteStore) DeleteExpiredResetTokens(ctx context.Context, now time.Time) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at < ?`, now.Unix()); err != nil {
		return fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return nil
}
