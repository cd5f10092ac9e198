package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/mail"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

const resetTokenTTL = 24 * time.Hour

// PasswordResetService issues and redeems single-use password reset tokens.
type PasswordResetService struct {
	store  storage.Store
	sender mail.Sender
	logger *slog.Logger
}

// NewPasswordResetService creates a password reset service.
func NewPasswordResetService(store storage.Store, sender mail.Sender, logger *slog.Logger) *PasswordResetService {
	return &PasswordResetService{store: store, sender: sender, logger: logger}
}

// RequestReset issues a reset token for the account matching identifier
// (username or email) and mails it. When no account matches it returns nil
// without side effects, so callers cannot use the endpoint to enumerate
// accounts. A mail delivery failure is logged but does not invalidate the
// token.
func (s *PasswordResetService) RequestReset(ctx context.Context, identifier string) error {
	user, err := s.store.GetUserByUsername(ctx, identifier)
	if err != nil {
		return err
	}
	if user == nil {
		user, err = s.store.GetUserByEmail(ctx, identifier)
		if err != nil {
			return err
		}
	}
	if user == nil {
		return nil
	}

	// One outstanding token per user. A new request supersedes any
	// previously issued token.
	if err := s.store.DeleteResetTokensByUser(ctx, user.ID); err != nil {
		return err
	}

	token := &models.PasswordResetToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL).Unix(),
	}
	if err := s.store.CreateResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	subject := "Password reset request"
	body := fmt.Sprintf("Hi %s,\n\nUse the token below to reset your password. It expires in 24 hours.\n\n%s\n", user.FirstName, token.Token)
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Error("failed to send reset mail", "user_id", user.ID, "error", err)
	}

	return nil
}

// ResetPassword redeems a token and sets the user's password to newPassword.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	rt, err := s.store.GetResetToken(ctx, token)
	if err != nil {
		return err
	}
	if rt == nil {
		return errs.Validation("invalid reset token")
	}
	if rt.Used {
		return errs.Validation("reset token already used")
	}
	if time.Now().Unix() > rt.ExpiresAt {
		return errs.Validation("reset token expired")
	}

	user, err := s.store.GetUser(ctx, rt.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.NotFound("user")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.RunInTx(ctx, func(tx storage.Store) error {
		user.PasswordHash = hash
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		return tx.MarkResetTokenUsed(ctx, token)
	})
}

// CleanupExpired deletes tokens past their expiry. Called periodically by
// the server sweep loop.
func (s *PasswordResetService) CleanupExpired(ctx context.Context) error {
	return s.store.DeleteExpiredResetTokens(ctx, time.Now())
}
