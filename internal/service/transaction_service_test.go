package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

func TestTransactionTenancy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	memberAccount := f.openAccount(t, f.member, "100.00")
	txn := f.post(t, f.member, memberAccount, "30.00")

	t.Run("peer sees the transaction through group scope", func(t *testing.T) {
		got, err := f.transactions.Get(ctx, f.actor(t, f.peer), txn.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != txn.ID {
			t.Error("Expected the member's transaction")
		}
	})

	t.Run("peer cannot update or delete it", func(t *testing.T) {
		_, err := f.transactions.Update(ctx, f.actor(t, f.peer), txn.ID, TransactionInput{
			Amount:     amount("10.00"),
			Type:       models.Expense,
			Date:       day("2024-06-01"),
			CategoryID: f.defaultCategory.ID,
			AccountID:  memberAccount.ID,
		})
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied on update, got %v", err)
		}
		if err := f.transactions.Delete(ctx, f.actor(t, f.peer), txn.ID); !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied on delete, got %v", err)
		}
	})

	t.Run("group admin can update it", func(t *testing.T) {
		updated, err := f.transactions.Update(ctx, f.actor(t, f.adminUser), txn.ID, TransactionInput{
			Amount:     amount("40.00"),
			Type:       models.Expense,
			Date:       day("2024-06-01"),
			CategoryID: f.defaultCategory.ID,
			AccountID:  memberAccount.ID,
		})
		if err != nil {
			t.Fatalf("Update by group admin failed: %v", err)
		}
		if !updated.Amount.Equal(amount("40.00")) {
			t.Errorf("Expected amount 40.00, got %s", updated.Amount)
		}
		// 100 - 30 reverted, then - 40 applied.
		account, err := f.store.GetAccount(ctx, memberAccount.ID)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if !account.Balance.Equal(amount("60.00")) {
			t.Errorf("Expected balance 60.00, got %s", account.Balance)
		}
	})

	t.Run("outsider gets not-found, not access-denied", func(t *testing.T) {
		_, err := f.transactions.Get(ctx, f.actor(t, f.standalone), txn.ID)
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("Expected not found for invisible record, got %v", err)
		}
	})

	t.Run("listing scopes to visibility", func(t *testing.T) {
		peerTxns, err := f.transactions.List(ctx, f.actor(t, f.peer), storage.TransactionFilter{
			From: day("2024-06-01"), To: day("2024-06-30"),
		})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(peerTxns) != 1 {
			t.Errorf("Expected peer to list 1 transaction, got %d", len(peerTxns))
		}

		aloneTxns, err := f.transactions.List(ctx, f.actor(t, f.standalone), storage.TransactionFilter{
			From: day("2024-06-01"), To: day("2024-06-30"),
		})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(aloneTxns) != 0 {
			t.Errorf("Expected standalone to list nothing, got %d", len(aloneTxns))
		}
	})
}

func TestTransactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	account := f.openAccount(t, f.standalone, "50.00")
	actor := f.actor(t, f.standalone)

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := f.transactions.Create(ctx, actor, TransactionInput{
			Amount:     amount("0.00"),
			Type:       models.Expense,
			Date:       day("2024-06-01"),
			CategoryID: f.defaultCategory.ID,
			AccountID:  account.ID,
		})
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("rejects expenses over the balance with available funds", func(t *testing.T) {
		_, err := f.transactions.Create(ctx, actor, TransactionInput{
			Amount:     amount("80.00"),
			Type:       models.Expense,
			Date:       day("2024-06-01"),
			CategoryID: f.defaultCategory.ID,
			AccountID:  account.ID,
		})
		var insufficient *errs.InsufficientFundsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("Expected InsufficientFundsError, got %v", err)
		}
		if !insufficient.Available.Equal(amount("50.00")) {
			t.Errorf("Expected available 50.00, got %s", insufficient.Available)
		}
	})

	t.Run("rejects posting against an inactive account", func(t *testing.T) {
		if err := f.accounts.Delete(ctx, actor, account.ID); err != nil {
			t.Fatalf("Delete account failed: %v", err)
		}
		_, err := f.transactions.Create(ctx, actor, TransactionInput{
			Amount:     amount("10.00"),
			Type:       models.Expense,
			Date:       day("2024-06-01"),
			CategoryID: f.defaultCategory.ID,
			AccountID:  account.ID,
		})
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("rejects unusable categories as not found", func(t *testing.T) {
		account2 := f.openAccount(t, f.standalone, "50.00")
		foreign, err := f.categories.Create(ctx, f.actor(t, f.owner), CategoryInput{Name: "Private"})
		if err != nil {
			t.Fatalf("Create category failed: %v", err)
		}
		_, err = f.transactions.Create(ctx, actor, TransactionInput{
			Amount:     amount("10.00"),
			Type:       models.Expense,
			Date:       day("2024-06-01"),
			CategoryID: foreign.ID,
			AccountID:  account2.ID,
		})
		if !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("Expected not found for invisible category, got %v", err)
		}
	})
}

func TestCreationGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("group member cannot create accounts, budgets, categories or schedules", func(t *testing.T) {
		member := f.actor(t, f.member)

		if _, err := f.accounts.Create(ctx, member, AccountInput{Name: "A"}); !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected account creation denied, got %v", err)
		}
		if _, err := f.categories.Create(ctx, member, CategoryInput{Name: "C"}); !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected category creation denied, got %v", err)
		}
		if _, err := f.budgets.Create(ctx, member, BudgetInput{
			Amount: amount("100.00"), StartDate: day("2024-06-01"), EndDate: day("2024-07-01"),
		}); !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected budget creation denied, got %v", err)
		}
		if _, err := f.recurring.Create(ctx, member, RecurringInput{
			Amount: amount("10.00"), Type: models.Expense, Recurrence: models.Monthly,
			CategoryID: f.defaultCategory.ID, AccountID: "any", StartDate: day("2024-06-01"),
		}); !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected schedule creation denied, got %v", err)
		}
	})

	t.Run("transactions are exempt from creation gating", func(t *testing.T) {
		account := f.openAccount(t, f.member, "100.00")
		txn := f.post(t, f.member, account, "10.00")
		if txn.UserID != f.member.ID {
			t.Error("Expected transaction owned by the member")
		}
	})

	t.Run("standalone user may create", func(t *testing.T) {
		if _, err := f.accounts.Create(ctx, f.actor(t, f.standalone), AccountInput{Name: "Mine"}); err != nil {
			t.Errorf("Expected standalone creation to pass: %v", err)
		}
	})
}

func TestCategoryService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.actor(t, f.standalone)

	t.Run("defaults are immutable", func(t *testing.T) {
		_, err := f.categories.Update(ctx, actor, f.defaultCategory.ID, CategoryInput{Name: "Renamed"})
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied updating default, got %v", err)
		}
		if err := f.categories.Delete(ctx, actor, f.defaultCategory.ID); !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied deleting default, got %v", err)
		}
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		if _, err := f.categories.Create(ctx, actor, CategoryInput{Name: "Food"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := f.categories.Create(ctx, actor, CategoryInput{Name: "Food"}); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error on duplicate, got %v", err)
		}
		// Colliding with a default counts too.
		if _, err := f.categories.Create(ctx, actor, CategoryInput{Name: "General"}); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error on default-name collision, got %v", err)
		}
	})

	t.Run("list merges defaults with scoped categories, sorted by name", func(t *testing.T) {
		categories, err := f.categories.List(ctx, actor)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(categories) != 2 {
			t.Fatalf("Expected defaults + own category, got %d", len(categories))
		}
		if categories[0].Name != "Food" || categories[1].Name != "General" {
			t.Errorf("Expected name-sorted [Food General], got [%s %s]", categories[0].Name, categories[1].Name)
		}
	})
}
