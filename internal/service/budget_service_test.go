package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkrish/fintrack/internal/errs"
)

func TestBudgetAlertThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.actor(t, f.standalone)
	threshold := func(v int) *int { return &v }

	base := BudgetInput{
		Amount:    amount("100.00"),
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-12-31"),
	}

	t.Run("omitted threshold falls back to the default", func(t *testing.T) {
		budget, err := f.budgets.Create(ctx, actor, base)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if budget.AlertThreshold != 80 {
			t.Errorf("Expected default threshold 80, got %d", budget.AlertThreshold)
		}
	})

	t.Run("an explicit zero threshold is kept", func(t *testing.T) {
		input := base
		input.AlertThreshold = threshold(0)
		budget, err := f.budgets.Create(ctx, actor, input)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if budget.AlertThreshold != 0 {
			t.Errorf("Expected threshold 0, got %d", budget.AlertThreshold)
		}

		input.AlertThreshold = nil
		updated, err := f.budgets.Update(ctx, actor, budget.ID, input)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.AlertThreshold != 0 {
			t.Errorf("Expected threshold 0 preserved, got %d", updated.AlertThreshold)
		}
	})

	t.Run("update replaces the threshold only when provided", func(t *testing.T) {
		input := base
		input.AlertThreshold = threshold(60)
		budget, err := f.budgets.Create(ctx, actor, input)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		input.AlertThreshold = nil
		updated, err := f.budgets.Update(ctx, actor, budget.ID, input)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.AlertThreshold != 60 {
			t.Errorf("Expected threshold 60 kept, got %d", updated.AlertThreshold)
		}

		input.AlertThreshold = threshold(95)
		updated, err = f.budgets.Update(ctx, actor, budget.ID, input)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.AlertThreshold != 95 {
			t.Errorf("Expected threshold 95, got %d", updated.AlertThreshold)
		}
	})

	t.Run("out-of-range thresholds are rejected", func(t *testing.T) {
		for _, v := range []int{-1, 101} {
			input := base
			input.AlertThreshold = threshold(v)
			if _, err := f.budgets.Create(ctx, actor, input); !errors.Is(err, errs.ErrValidation) {
				t.Errorf("Expected validation error for %d, got %v", v, err)
			}
		}
	})
}
