package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceType is the closed set of schedule cadences.
type RecurrenceType string

const (
	Daily   RecurrenceType = "DAILY"
	Weekly  RecurrenceType = "WEEKLY"
	Monthly RecurrenceType = "MONTHLY"
	Yearly  RecurrenceType = "YEARLY"
)

// RecurringTransaction is a template that periodically materializes into
// concrete transactions. It is ACTIVE while IsActive is set; it transitions
// to ENDED (IsActive cleared) once the next due date would exceed EndDate,
// and can otherwise be toggled inactive and back manually.
type RecurringTransaction struct {
	// ID is the unique identifier for the schedule (UUID format).
	ID string

	Description string
	Notes       string

	// Amount is the unsigned magnitude of each materialized transaction,
	// scale 2.
	Amount decimal.Decimal

	Type       TransactionType
	Recurrence RecurrenceType

	// UserID owns the schedule; materialized transactions belong to this
	// user regardless of who triggers execution.
	UserID string

	CategoryID string
	AccountID  string

	StartDate time.Time

	// NextDueDate is the next day the schedule should execute.
	NextDueDate time.Time

	// EndDate bounds the schedule; zero means no end.
	EndDate time.Time

	IsActive bool

	CreatedAt int64
	UpdatedAt int64
}

// HasEndDate reports whether the schedule is bounded.
func (r *RecurringTransaction) HasEndDate() bool {
	return !r.EndDate.IsZero()
}

// Due reports whether the schedule should execute on the given day: the next
// due date has arrived and the end date, if any, has not passed.
func (r *RecurringTransaction) Due(today time.Time) bool {
	if r.NextDueDate.After(today) {
		return false
	}
	return !r.HasEndDate() || !r.EndDate.Before(today)
}
