package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

var (
	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDisabled is returned for blocked users. Deliberately
	// distinct from bad credentials: the caller holds valid credentials
	// for an account an admin has turned off.
	ErrAccountDisabled = errors.New("account is disabled")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
	ErrUsernameExists  = errors.New("username already registered")
	ErrEmailExists     = errors.New("email already registered")
)

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ValidatePassword checks minimum password requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// RegisterInput carries the fields of a self-service registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	store storage.Store
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(store storage.Store) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

// Register creates a new USER-role account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if existing, err := a.store.GetUserByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameExists
	}
	if existing, err := a.store.GetUserByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         models.RoleUser,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the identifier (username or email) and password.
// Blocked users fail with ErrAccountDisabled rather than bad credentials.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := a.store.GetUserByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = a.store.GetUserByEmail(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsBlocked() {
		return nil, ErrAccountDisabled
	}

	return user, nil
}
