package service

import (
	"context"

	"github.com/mkrish/fintrack/internal/auth"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/scope"
)

// AuthService handles registration, login and password reset, issuing JWTs
// for authenticated sessions.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
	reset         *auth.PasswordResetService
	scopes        *scope.Resolver
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, reset *auth.PasswordResetService, scopes *scope.Resolver) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager, reset: reset, scopes: scopes}
}

// Register creates a standalone USER-role account and returns it with a
// session token.
func (s *AuthService) Register(ctx context.Context, input auth.RegisterInput) (*models.User, string, error) {
	user, err := s.authenticator.Register(ctx, input)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by username or email and returns a session token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ResolveActor classifies an authenticated user for the request.
func (s *AuthService) ResolveActor(ctx context.Context, user *models.User) (*scope.Actor, error) {
	return s.scopes.ResolveActor(ctx, user)
}

// RequestPasswordReset issues a reset token for the matching account.
// Succeeds silently when no account matches.
func (s *AuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	return s.reset.RequestReset(ctx, identifier)
}

// ResetPassword redeems a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.reset.ResetPassword(ctx, token, newPassword)
}
