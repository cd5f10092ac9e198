package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a per-user spending envelope over a date range, optionally
// scoped to one category.
type Budget struct {
	// ID is the unique identifier for the budget (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// CategoryID scopes the budget to one category; empty means all
	// spending counts against it.
	CategoryID string

	// Amount is the budgeted amount, scale 2.
	Amount decimal.Decimal

	StartDate time.Time
	EndDate   time.Time

	// AlertThreshold is the percentage of Amount at which the user should
	// be warned.
	AlertThreshold int

	// IsActive is the soft-delete flag.
	IsActive bool

	CreatedAt int64
	UpdatedAt int64
}
