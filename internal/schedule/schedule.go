// Package schedule computes recurring-transaction due dates and
// materializes due schedules into ledger transactions.
//
// A schedule is ACTIVE while IsActive is set. It transitions to ENDED
// (IsActive cleared) once the advanced due date would exceed its end date;
// that transition is terminal unless the schedule is manually toggled back.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/ledger"
	"github.com/mkrish/fintrack/internal/metrics"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

// NextDueDate advances a date by one recurrence interval. An unknown
// recurrence type is a configuration error: the enum is closed, so it can
// only mean corrupted state or a programming mistake.
func NextDueDate(date time.Time, recurrence models.RecurrenceType) (time.Time, error) {
	switch recurrence {
	case models.Daily:
		return date.AddDate(0, 0, 1), nil
	case models.Weekly:
		return date.AddDate(0, 0, 7), nil
	case models.Monthly:
		return date.AddDate(0, 1, 0), nil
	case models.Yearly:
		return date.AddDate(1, 0, 0), nil
	}
	return time.Time{}, errs.Fatal("unknown recurrence type %q", recurrence)
}

// Scheduler executes recurring schedules against the ledger.
type Scheduler struct {
	store storage.Store

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// New creates a Scheduler over the given store.
func New(store storage.Store) *Scheduler {
	return &Scheduler{store: store, Now: time.Now}
}

func (s *Scheduler) today() time.Time {
	now := s.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Execute materializes one due schedule: it posts a transaction dated today,
// owned by the schedule's owner (not whoever triggered execution), then
// advances the due date or transitions the schedule to ENDED. The whole
// operation runs in a single transactional scope.
func (s *Scheduler) Execute(ctx context.Context, rec *models.RecurringTransaction) error {
	if !rec.IsActive {
		return errs.Validation("cannot execute inactive recurring transaction")
	}

	next, err := NextDueDate(rec.NextDueDate, rec.Recurrence)
	if err != nil {
		return err
	}

	return s.store.RunInTx(ctx, func(tx storage.Store) error {
		txn := &models.Transaction{
			Amount:      rec.Amount,
			Description: rec.Description,
			Notes:       rec.Notes,
			Type:        rec.Type,
			Date:        s.today(),
			UserID:      rec.UserID,
			CategoryID:  rec.CategoryID,
			AccountID:   rec.AccountID,
			RecurringID: rec.ID,
		}
		if err := ledger.New(tx).Post(ctx, txn); err != nil {
			return err
		}

		if rec.HasEndDate() && next.After(rec.EndDate) {
			rec.IsActive = false
		} else {
			rec.NextDueDate = next
		}
		if err := tx.UpdateRecurring(ctx, rec); err != nil {
			return err
		}
		metrics.SweepExecutions.Inc()
		return nil
	})
}

// ProcessDue sweeps every user owning recurring schedules and executes the
// ones due today. Each schedule is an independent unit of work: a failure is
// logged and counted but never blocks the rest of the sweep. Re-running is
// safe because executed schedules have advanced past today.
func (s *Scheduler) ProcessDue(ctx context.Context) error {
	today := s.today()

	owners, err := s.store.ListRecurringOwners(ctx)
	if err != nil {
		return err
	}

	for _, userID := range owners {
		due, err := s.store.ListDueRecurring(ctx, userID, today)
		if err != nil {
			slog.Error("failed to list due schedules", "user_id", userID, "error", err)
			continue
		}
		for _, rec := range due {
			if err := s.Execute(ctx, rec); err != nil {
				metrics.SweepFailures.Inc()
				slog.Error("recurring execution failed",
					"recurring_id", rec.ID,
					"user_id", rec.UserID,
					"error", err,
				)
			}
		}
	}
	return nil
}
