package models

import "github.com/shopspring/decimal"

// Account holds a running balance for one user. The balance is a maintained
// invariant: it is mutated by exactly the signed delta of each posted
// transaction, never recomputed as an aggregate.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	Name        string
	Description string

	// Type is a free-form label such as "checking" or "savings".
	Type string

	// UserID is the owning user.
	UserID string

	// Balance is the current running balance, scale 2.
	Balance decimal.Decimal

	// IsActive is the soft-delete flag. Deleted accounts keep their rows so
	// historical transactions stay resolvable.
	IsActive bool

	CreatedAt int64
	UpdatedAt int64
}
