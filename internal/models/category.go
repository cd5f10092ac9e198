package models

// Category labels transactions and budgets. A category is either a default
// (no owning user, visible to everyone and immutable) or owned by exactly
// one user.
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string

	Name        string
	Description string

	// Color is a hex color code for UI display.
	Color string

	// IsDefault marks a shared, read-only category.
	IsDefault bool

	// UserID is the owning user; empty for default categories.
	UserID string

	CreatedAt int64
	UpdatedAt int64
}
