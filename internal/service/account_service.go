package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// AccountService manages balance-holding accounts.
type AccountService struct {
	store  storage.Store
	scopes *scope.Resolver
	perms  *permission.Evaluator
}

// NewAccountService creates a new AccountService.
func NewAccountService(store storage.Store, scopes *scope.Resolver, perms *permission.Evaluator) *AccountService {
	return &AccountService{store: store, scopes: scopes, perms: perms}
}

// AccountInput carries the caller-settable fields of an account.
type AccountInput struct {
	Name           string
	Description    string
	Type           string
	InitialBalance decimal.Decimal
}

// List returns the accounts visible to the actor, active ones only.
func (s *AccountService) List(ctx context.Context, actor *scope.Actor) ([]*models.Account, error) {
	userIDs, err := s.scopes.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.ListAccountsForUsers(ctx, userIDs)
}

// Get returns one account visible to the actor.
func (s *AccountService) Get(ctx context.Context, actor *scope.Actor, id string) (*models.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errs.NotFound("account")
	}
	visible, err := s.perms.CanView(ctx, actor, account.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errs.NotFound("account")
	}
	return account, nil
}

// Create opens a new account owned by the actor with the given starting
// balance.
func (s *AccountService) Create(ctx context.Context, actor *scope.Actor, input AccountInput) (*models.Account, error) {
	if err := s.perms.CanCreate(ctx, actor); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, errs.Validation("account name is required")
	}
	if input.InitialBalance.IsNegative() {
		return nil, errs.Validation("initial balance cannot be negative")
	}

	account := &models.Account{
		Name:        input.Name,
		Description: input.Description,
		Type:        input.Type,
		UserID:      actor.User.ID,
		Balance:     input.InitialBalance,
		IsActive:    true,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	slog.Info("account created", "account_id", account.ID, "user_id", account.UserID)
	return account, nil
}

// Update changes an account's descriptive fields. The balance is a
// maintained invariant and is never set directly.
func (s *AccountService) Update(ctx context.Context, actor *scope.Actor, id string, input AccountInput) (*models.Account, error) {
	account, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanMutate(ctx, actor, account.UserID); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, errs.Validation("account name is required")
	}

	account.Name = input.Name
	account.Description = input.Description
	account.Type = input.Type
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete soft-deletes an account. The row stays so historical transactions
// remain resolvable.
func (s *AccountService) Delete(ctx context.Context, actor *scope.Actor, id string) error {
	account, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.perms.CanMutate(ctx, actor, account.UserID); err != nil {
		return err
	}
	account.IsActive = false
	return s.store.UpdateAccount(ctx, account)
}
