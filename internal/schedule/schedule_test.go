package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
	"github.com/mkrish/fintrack/internal/storage/sqlite"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNextDueDate(t *testing.T) {
	base := day("2024-01-15")

	tests := []struct {
		recurrence models.RecurrenceType
		want       string
	}{
		{models.Daily, "2024-01-16"},
		{models.Weekly, "2024-01-22"},
		{models.Monthly, "2024-02-15"},
		{models.Yearly, "2025-01-15"},
	}
	for _, tt := range tests {
		t.Run(string(tt.recurrence), func(t *testing.T) {
			got, err := NextDueDate(base, tt.recurrence)
			if err != nil {
				t.Fatalf("NextDueDate failed: %v", err)
			}
			if !got.Equal(day(tt.want)) {
				t.Errorf("Expected %s, got %s", tt.want, got.Format("2006-01-02"))
			}
		})
	}

	t.Run("month-end clamping rolls over", func(t *testing.T) {
		// AddDate normalizes Jan 31 + 1 month to Mar 2 (or Mar 3 in leap
		// years' absence); the schedule keeps advancing either way.
		got, err := NextDueDate(day("2024-01-31"), models.Monthly)
		if err != nil {
			t.Fatalf("NextDueDate failed: %v", err)
		}
		if !got.After(day("2024-02-28")) {
			t.Errorf("Expected advance past February, got %s", got.Format("2006-01-02"))
		}
	})

	t.Run("unknown recurrence is a configuration error", func(t *testing.T) {
		_, err := NextDueDate(base, models.RecurrenceType("FORTNIGHTLY"))
		if err == nil {
			t.Fatal("Expected error for unknown recurrence")
		}
	})
}

type fixture struct {
	store     storage.Store
	scheduler *Scheduler
	user      *models.User
	account   *models.Account
	category  *models.Category
}

func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	user := &models.User{Username: "u", Email: "u@example.com", PasswordHash: "x", Role: models.RoleUser}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	category := &models.Category{Name: "Bills", IsDefault: true}
	if err := store.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	account := &models.Account{
		Name:     "Main",
		UserID:   user.ID,
		Balance:  decimal.RequireFromString(balance),
		IsActive: true,
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	return &fixture{store: store, scheduler: New(store), user: user, account: account, category: category}
}

func (f *fixture) schedule(t *testing.T, amount, nextDue, endDate string) *models.RecurringTransaction {
	t.Helper()
	rec := &models.RecurringTransaction{
		Description: "rent",
		Amount:      decimal.RequireFromString(amount),
		Type:        models.Expense,
		Recurrence:  models.Monthly,
		UserID:      f.user.ID,
		CategoryID:  f.category.ID,
		AccountID:   f.account.ID,
		StartDate:   day("2024-01-15"),
		NextDueDate: day(nextDue),
		IsActive:    true,
	}
	if endDate != "" {
		rec.EndDate = day(endDate)
	}
	if err := f.store.CreateRecurring(context.Background(), rec); err != nil {
		t.Fatalf("CreateRecurring failed: %v", err)
	}
	return rec
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("posts a transaction and advances the due date", func(t *testing.T) {
		f := newFixture(t, "1000.00")
		f.scheduler.Now = func() time.Time { return day("2024-01-15") }
		rec := f.schedule(t, "500.00", "2024-01-15", "")

		if err := f.scheduler.Execute(ctx, rec); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		account, err := f.store.GetAccount(ctx, f.account.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if !account.Balance.Equal(decimal.RequireFromString("500.00")) {
			t.Errorf("Expected balance 500.00, got %s", account.Balance)
		}

		got, err := f.store.GetRecurring(ctx, rec.ID)
		if err != nil {
			t.Fatalf("GetRecurring failed: %v", err)
		}
		if !got.NextDueDate.Equal(day("2024-02-15")) {
			t.Errorf("Expected next due 2024-02-15, got %s", got.NextDueDate.Format("2006-01-02"))
		}
		if !got.IsActive {
			t.Error("Expected schedule to stay active")
		}

		txns, err := f.store.ListTransactionsForUsers(ctx, []string{f.user.ID}, storage.TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactionsForUsers failed: %v", err)
		}
		if len(txns) != 1 {
			t.Fatalf("Expected 1 materialized transaction, got %d", len(txns))
		}
		if txns[0].RecurringID != rec.ID {
			t.Error("Expected transaction to back-reference its schedule")
		}
		if !txns[0].Date.Equal(day("2024-01-15")) {
			t.Errorf("Expected transaction dated today, got %s", txns[0].Date.Format("2006-01-02"))
		}
		if txns[0].UserID != f.user.ID {
			t.Error("Expected transaction owned by the schedule owner")
		}
	})

	t.Run("transitions to ended when the next due date passes the end date", func(t *testing.T) {
		f := newFixture(t, "2000.00")
		f.scheduler.Now = func() time.Time { return day("2024-02-15") }
		// Monthly from Feb 15 advances to Mar 15, past the Mar 1 end date.
		rec := f.schedule(t, "500.00", "2024-02-15", "2024-03-01")

		if err := f.scheduler.Execute(ctx, rec); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		got, err := f.store.GetRecurring(ctx, rec.ID)
		if err != nil {
			t.Fatalf("GetRecurring failed: %v", err)
		}
		if got.IsActive {
			t.Error("Expected schedule to transition to ended")
		}
		// The due cursor keeps its position; only the active flag changes.
		if !got.NextDueDate.Equal(day("2024-02-15")) {
			t.Errorf("Expected due date unchanged, got %s", got.NextDueDate.Format("2006-01-02"))
		}
	})

	t.Run("inactive schedule is rejected", func(t *testing.T) {
		f := newFixture(t, "1000.00")
		rec := f.schedule(t, "500.00", "2024-01-15", "")
		rec.IsActive = false
		if err := f.store.UpdateRecurring(ctx, rec); err != nil {
			t.Fatalf("UpdateRecurring failed: %v", err)
		}

		err := f.scheduler.Execute(ctx, rec)
		if err == nil {
			t.Fatal("Expected error for inactive schedule")
		}
	})

	t.Run("insufficient funds rolls the whole execution back", func(t *testing.T) {
		f := newFixture(t, "100.00")
		f.scheduler.Now = func() time.Time { return day("2024-01-15") }
		rec := f.schedule(t, "500.00", "2024-01-15", "")

		err := f.scheduler.Execute(ctx, rec)
		if err == nil {
			t.Fatal("Expected insufficient funds error")
		}

		// Neither the due date nor the balance moved.
		got, err := f.store.GetRecurring(ctx, rec.ID)
		if err != nil {
			t.Fatalf("GetRecurring failed: %v", err)
		}
		if !got.NextDueDate.Equal(day("2024-01-15")) {
			t.Errorf("Expected due date unchanged, got %s", got.NextDueDate.Format("2006-01-02"))
		}
		account, err := f.store.GetAccount(ctx, f.account.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if !account.Balance.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("Expected balance unchanged, got %s", account.Balance)
		}
	})
}

func TestProcessDue(t *testing.T) {
	ctx := context.Background()

	t.Run("executes due schedules and skips future ones", func(t *testing.T) {
		f := newFixture(t, "2000.00")
		f.scheduler.Now = func() time.Time { return day("2024-01-15") }
		due := f.schedule(t, "500.00", "2024-01-15", "")
		future := f.schedule(t, "500.00", "2024-06-01", "")

		if err := f.scheduler.ProcessDue(ctx); err != nil {
			t.Fatalf("ProcessDue failed: %v", err)
		}

		gotDue, _ := f.store.GetRecurring(ctx, due.ID)
		if !gotDue.NextDueDate.Equal(day("2024-02-15")) {
			t.Error("Expected due schedule to advance")
		}
		gotFuture, _ := f.store.GetRecurring(ctx, future.ID)
		if !gotFuture.NextDueDate.Equal(day("2024-06-01")) {
			t.Error("Expected future schedule untouched")
		}
	})

	t.Run("one failing schedule never blocks the rest", func(t *testing.T) {
		f := newFixture(t, "600.00")
		f.scheduler.Now = func() time.Time { return day("2024-01-15") }
		// First schedule drains the account below the second's amount; the
		// second fails but a third, cheaper one still executes.
		f.schedule(t, "500.00", "2024-01-15", "")
		failing := f.schedule(t, "500.00", "2024-01-15", "")
		cheap := f.schedule(t, "50.00", "2024-01-15", "")

		if err := f.scheduler.ProcessDue(ctx); err != nil {
			t.Fatalf("ProcessDue failed: %v", err)
		}

		gotFailing, _ := f.store.GetRecurring(ctx, failing.ID)
		gotCheap, _ := f.store.GetRecurring(ctx, cheap.ID)
		advanced := 0
		if gotFailing.NextDueDate.Equal(day("2024-02-15")) {
			advanced++
		}
		if gotCheap.NextDueDate.Equal(day("2024-02-15")) {
			advanced++
		}
		if advanced != 1 {
			t.Errorf("Expected exactly one of the contending schedules to execute, got %d", advanced)
		}

		txns, err := f.store.ListTransactionsForUsers(ctx, []string{f.user.ID}, storage.TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactionsForUsers failed: %v", err)
		}
		if len(txns) != 2 {
			t.Errorf("Expected 2 posted transactions, got %d", len(txns))
		}
	})

	t.Run("re-running the sweep is idempotent for the day", func(t *testing.T) {
		f := newFixture(t, "2000.00")
		f.scheduler.Now = func() time.Time { return day("2024-01-15") }
		f.schedule(t, "500.00", "2024-01-15", "")

		if err := f.scheduler.ProcessDue(ctx); err != nil {
			t.Fatalf("ProcessDue failed: %v", err)
		}
		if err := f.scheduler.ProcessDue(ctx); err != nil {
			t.Fatalf("second ProcessDue failed: %v", err)
		}

		txns, err := f.store.ListTransactionsForUsers(ctx, []string{f.user.ID}, storage.TransactionFilter{})
		if err != nil {
			t.Fatalf("ListTransactionsForUsers failed: %v", err)
		}
		if len(txns) != 1 {
			t.Errorf("Expected a single posting across repeated sweeps, got %d", len(txns))
		}
	})
}

func TestExecuteEndedScenario(t *testing.T) {
	// Monthly schedule starting 2024-01-15 with end date 2024-03-01:
	// executions on Jan 15 and Feb 15, then the ENDED transition.
	ctx := context.Background()
	f := newFixture(t, "2000.00")
	rec := f.schedule(t, "500.00", "2024-01-15", "2024-03-01")

	f.scheduler.Now = func() time.Time { return day("2024-01-15") }
	if err := f.scheduler.Execute(ctx, rec); err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if !rec.IsActive || !rec.NextDueDate.Equal(day("2024-02-15")) {
		t.Fatalf("Expected active with due 2024-02-15, got active=%v due=%s", rec.IsActive, rec.NextDueDate.Format("2006-01-02"))
	}

	f.scheduler.Now = func() time.Time { return day("2024-02-15") }
	if err := f.scheduler.Execute(ctx, rec); err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if rec.IsActive {
		t.Error("Expected ENDED after the second execution")
	}

	// An ended schedule refuses further execution.
	if err := f.scheduler.Execute(ctx, rec); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("Expected validation error executing ended schedule, got %v", err)
	}

	txns, err := f.store.ListTransactionsForUsers(ctx, []string{f.user.ID}, storage.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactionsForUsers failed: %v", err)
	}
	if len(txns) != 2 {
		t.Errorf("Expected 2 materialized transactions, got %d", len(txns))
	}
}

