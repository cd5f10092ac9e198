package models

// PasswordResetToken is a single-use, time-limited token mailed to a user's
// registered address.
type PasswordResetToken struct {
	// Token is the opaque token value (UUID format).
	Token string

	// UserID is the user the token was issued for.
	UserID string

	// ExpiresAt is the Unix timestamp after which the token is invalid.
	ExpiresAt int64

	// Used marks a consumed token; tokens are never valid twice.
	Used bool

	CreatedAt int64
}
