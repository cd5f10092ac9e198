package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the signed effect of a transaction on its account.
type TransactionType string

const (
	// Income adds the amount to the account balance.
	Income TransactionType = "INCOME"
	// Expense subtracts the amount from the account balance.
	Expense TransactionType = "EXPENSE"
)

// Opposite returns the type whose effect exactly negates this one. Reverting
// a posted transaction is implemented as applying the opposite type with the
// same amount.
func (t TransactionType) Opposite() TransactionType {
	if t == Income {
		return Expense
	}
	return Income
}

// Transaction is a single posted ledger entry against one account.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// Amount is the unsigned magnitude, scale 2. The sign comes from Type.
	Amount decimal.Decimal

	Description string
	Notes       string

	Type TransactionType

	// Date is the transaction date (calendar day, no time component).
	Date time.Time

	// UserID is the authoring user. Empty after the author is deleted; the
	// entry itself is preserved for history.
	UserID string

	// CategoryID and AccountID reference the category and account the
	// transaction was created against.
	CategoryID string
	AccountID  string

	// RecurringID back-references the recurring schedule that spawned this
	// transaction, if any.
	RecurringID string

	// IsApproved is set when the managing admin approves the transaction.
	IsApproved bool

	CreatedAt int64
	UpdatedAt int64
}
