package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/schedule"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// RecurringService manages recurring transaction schedules.
type RecurringService struct {
	store     storage.Store
	scopes    *scope.Resolver
	perms     *permission.Evaluator
	scheduler *schedule.Scheduler
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(store storage.Store, scopes *scope.Resolver, perms *permission.Evaluator, scheduler *schedule.Scheduler) *RecurringService {
	return &RecurringService{store: store, scopes: scopes, perms: perms, scheduler: scheduler}
}

// RecurringInput carries the caller-settable fields of a schedule.
type RecurringInput struct {
	Description string
	Notes       string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Recurrence  models.RecurrenceType
	CategoryID  string
	AccountID   string
	StartDate   time.Time
	EndDate     time.Time
}

func (in *RecurringInput) validate() error {
	if !in.Amount.IsPositive() {
		return errs.Validation("amount must be positive")
	}
	switch in.Type {
	case models.Income, models.Expense:
	default:
		return errs.Validation("invalid transaction type %q", in.Type)
	}
	switch in.Recurrence {
	case models.Daily, models.Weekly, models.Monthly, models.Yearly:
	default:
		return errs.Validation("invalid recurrence type %q", in.Recurrence)
	}
	if in.StartDate.IsZero() {
		return errs.Validation("start date is required")
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		return errs.Validation("end date must not be before start date")
	}
	return nil
}

// List returns the schedules visible to the actor.
func (s *RecurringService) List(ctx context.Context, actor *scope.Actor, activeOnly bool) ([]*models.RecurringTransaction, error) {
	userIDs, err := s.scopes.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.ListRecurringForUsers(ctx, userIDs, activeOnly)
}

// Get returns one schedule visible to the actor.
func (s *RecurringService) Get(ctx context.Context, actor *scope.Actor, id string) (*models.RecurringTransaction, error) {
	rec, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errs.NotFound("recurring transaction")
	}
	visible, err := s.perms.CanView(ctx, actor, rec.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errs.NotFound("recurring transaction")
	}
	return rec, nil
}

// Create adds a schedule owned by the actor. The first due date is the start
// date itself.
func (s *RecurringService) Create(ctx context.Context, actor *scope.Actor, input RecurringInput) (*models.RecurringTransaction, error) {
	if err := s.perms.CanCreate(ctx, actor); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, input); err != nil {
		return nil, err
	}

	rec := &models.RecurringTransaction{
		Description: input.Description,
		Notes:       input.Notes,
		Amount:      input.Amount,
		Type:        input.Type,
		Recurrence:  input.Recurrence,
		UserID:      actor.User.ID,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		StartDate:   input.StartDate,
		NextDueDate: input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    true,
	}
	if err := s.store.CreateRecurring(ctx, rec); err != nil {
		return nil, err
	}
	slog.Info("recurring schedule created", "recurring_id", rec.ID, "recurrence", rec.Recurrence, "user_id", rec.UserID)
	return rec, nil
}

// Update rewrites a schedule. Changing the start date or the recurrence
// cadence resets the next due date to the start date; otherwise the due
// cursor keeps its position.
func (s *RecurringService) Update(ctx context.Context, actor *scope.Actor, id string, input RecurringInput) (*models.RecurringTransaction, error) {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanMutate(ctx, actor, rec.UserID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, input); err != nil {
		return nil, err
	}

	if !input.StartDate.Equal(rec.StartDate) || input.Recurrence != rec.Recurrence {
		rec.NextDueDate = input.StartDate
	}
	rec.Description = input.Description
	rec.Notes = input.Notes
	rec.Amount = input.Amount
	rec.Type = input.Type
	rec.Recurrence = input.Recurrence
	rec.CategoryID = input.CategoryID
	rec.AccountID = input.AccountID
	rec.StartDate = input.StartDate
	rec.EndDate = input.EndDate
	if err := s.store.UpdateRecurring(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Toggle flips a schedule between active and inactive. A schedule whose end
// date has passed cannot be reactivated.
func (s *RecurringService) Toggle(ctx context.Context, actor *scope.Actor, id string) (*models.RecurringTransaction, error) {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanMutate(ctx, actor, rec.UserID); err != nil {
		return nil, err
	}
	if !rec.IsActive && rec.HasEndDate() && rec.EndDate.Before(time.Now()) {
		return nil, errs.Validation("cannot reactivate a schedule past its end date")
	}

	rec.IsActive = !rec.IsActive
	if err := s.store.UpdateRecurring(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a schedule. Transactions it already materialized keep their
// back-reference and are untouched.
func (s *RecurringService) Delete(ctx context.Context, actor *scope.Actor, id string) error {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.perms.CanMutate(ctx, actor, rec.UserID); err != nil {
		return err
	}
	return s.store.DeleteRecurring(ctx, id)
}

// Execute materializes one schedule immediately. The posted transaction is
// owned by the schedule's owner, not the actor who triggered it.
func (s *RecurringService) Execute(ctx context.Context, actor *scope.Actor, id string) error {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.perms.CanMutate(ctx, actor, rec.UserID); err != nil {
		return err
	}
	return s.scheduler.Execute(ctx, rec)
}

// ProcessDue runs the due-schedule sweep across all users. Called from the
// server's sweep loop; individual failures never abort the sweep.
func (s *RecurringService) ProcessDue(ctx context.Context) error {
	return s.scheduler.ProcessDue(ctx)
}

func (s *RecurringService) checkReferences(ctx context.Context, actor *scope.Actor, input RecurringInput) error {
	category, err := s.store.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return errs.NotFound("category")
	}
	if !category.IsDefault {
		visible, err := s.perms.CanView(ctx, actor, category.UserID)
		if err != nil {
			return err
		}
		if !visible {
			return errs.NotFound("category")
		}
	}

	account, err := s.store.GetAccount(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return errs.NotFound("account")
	}
	visible, err := s.perms.CanView(ctx, actor, account.UserID)
	if err != nil {
		return err
	}
	if !visible {
		return errs.NotFound("account")
	}
	if !account.IsActive {
		return errs.Validation("account is inactive")
	}
	return nil
}
