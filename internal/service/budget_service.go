package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// defaultAlertThreshold is the warn-at percentage used when the caller does
// not set one.
const defaultAlertThreshold = 80

// BudgetService manages per-user spending envelopes.
type BudgetService struct {
	store  storage.Store
	scopes *scope.Resolver
	perms  *permission.Evaluator
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(store storage.Store, scopes *scope.Resolver, perms *permission.Evaluator) *BudgetService {
	return &BudgetService{store: store, scopes: scopes, perms: perms}
}

// BudgetInput carries the caller-settable fields of a budget. A nil
// AlertThreshold means "not provided": Create falls back to the default and
// Update keeps the stored value. An explicit 0 is a valid threshold.
type BudgetInput struct {
	CategoryID     string
	Amount         decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	AlertThreshold *int
}

func (in *BudgetInput) validate() error {
	if !in.Amount.IsPositive() {
		return errs.Validation("budget amount must be positive")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return errs.Validation("budget start and end dates are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return errs.Validation("budget end date must be after start date")
	}
	if in.AlertThreshold != nil && (*in.AlertThreshold < 0 || *in.AlertThreshold > 100) {
		return errs.Validation("alert threshold must be between 0 and 100")
	}
	return nil
}

// List returns the budgets visible to the actor.
func (s *BudgetService) List(ctx context.Context, actor *scope.Actor) ([]*models.Budget, error) {
	userIDs, err := s.scopes.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.ListBudgetsForUsers(ctx, userIDs)
}

// Get returns one budget visible to the actor.
func (s *BudgetService) Get(ctx context.Context, actor *scope.Actor, id string) (*models.Budget, error) {
	budget, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, errs.NotFound("budget")
	}
	visible, err := s.perms.CanView(ctx, actor, budget.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errs.NotFound("budget")
	}
	return budget, nil
}

// Create adds a budget owned by the actor. CategoryID is optional; when set
// it must resolve to a category the actor may use.
func (s *BudgetService) Create(ctx context.Context, actor *scope.Actor, input BudgetInput) (*models.Budget, error) {
	if err := s.perms.CanCreate(ctx, actor); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.CategoryID != "" {
		if err := s.checkCategory(ctx, actor, input.CategoryID); err != nil {
			return nil, err
		}
	}
	threshold := defaultAlertThreshold
	if input.AlertThreshold != nil {
		threshold = *input.AlertThreshold
	}

	budget := &models.Budget{
		UserID:         actor.User.ID,
		CategoryID:     input.CategoryID,
		Amount:         input.Amount,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		AlertThreshold: threshold,
		IsActive:       true,
	}
	if err := s.store.CreateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// Update rewrites a budget's fields.
func (s *BudgetService) Update(ctx context.Context, actor *scope.Actor, id string, input BudgetInput) (*models.Budget, error) {
	budget, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanMutate(ctx, actor, budget.UserID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.CategoryID != "" {
		if err := s.checkCategory(ctx, actor, input.CategoryID); err != nil {
			return nil, err
		}
	}

	budget.CategoryID = input.CategoryID
	budget.Amount = input.Amount
	budget.StartDate = input.StartDate
	budget.EndDate = input.EndDate
	if input.AlertThreshold != nil {
		budget.AlertThreshold = *input.AlertThreshold
	}
	if err := s.store.UpdateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// Delete soft-deletes a budget.
func (s *BudgetService) Delete(ctx context.Context, actor *scope.Actor, id string) error {
	budget, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.perms.CanMutate(ctx, actor, budget.UserID); err != nil {
		return err
	}
	budget.IsActive = false
	return s.store.UpdateBudget(ctx, budget)
}

func (s *BudgetService) checkCategory(ctx context.Context, actor *scope.Actor, id string) error {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return errs.NotFound("category")
	}
	if category.IsDefault {
		return nil
	}
	visible, err := s.perms.CanView(ctx, actor, category.UserID)
	if err != nil {
		return err
	}
	if !visible {
		return errs.NotFound("category")
	}
	return nil
}
