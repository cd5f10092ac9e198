// Package service implements the application operations on top of the
// scope, permission, ledger and schedule engines. Every operation takes the
// resolved actor explicitly; services never consult ambient identity state.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/ledger"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// TransactionService manages ledger transactions.
type TransactionService struct {
	store  storage.Store
	scopes *scope.Resolver
	perms  *permission.Evaluator
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store, scopes *scope.Resolver, perms *permission.Evaluator) *TransactionService {
	return &TransactionService{store: store, scopes: scopes, perms: perms}
}

// TransactionInput carries the caller-settable fields of a transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Description string
	Notes       string
	Type        models.TransactionType
	Date        time.Time
	CategoryID  string
	AccountID   string
}

func (in *TransactionInput) validate() error {
	if !in.Amount.IsPositive() {
		return errs.Validation("amount must be positive")
	}
	switch in.Type {
	case models.Income, models.Expense:
	default:
		return errs.Validation("invalid transaction type %q", in.Type)
	}
	if in.Date.IsZero() {
		return errs.Validation("transaction date is required")
	}
	return nil
}

// List returns the transactions visible to the actor, newest first. When the
// filter has no date range it defaults to the last month.
func (s *TransactionService) List(ctx context.Context, actor *scope.Actor, filter storage.TransactionFilter) ([]*models.Transaction, error) {
	if filter.From.IsZero() && filter.To.IsZero() {
		now := time.Now()
		filter.To = now
		filter.From = now.AddDate(0, -1, 0)
	}

	userIDs, err := s.scopes.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactionsForUsers(ctx, userIDs, filter)
}

// Get returns one transaction. Absence and invisibility are the same
// not-found error.
func (s *TransactionService) Get(ctx context.Context, actor *scope.Actor, id string) (*models.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errs.NotFound("transaction")
	}
	visible, err := s.perms.CanView(ctx, actor, txn.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errs.NotFound("transaction")
	}
	return txn, nil
}

// Create posts a new transaction owned by the actor. The balance mutation
// and the record insert land in one storage transaction.
func (s *TransactionService) Create(ctx context.Context, actor *scope.Actor, input TransactionInput) (*models.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if _, err := s.resolveCategory(ctx, actor, input.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.resolveAccount(ctx, actor, input.AccountID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		Amount:      input.Amount,
		Description: input.Description,
		Notes:       input.Notes,
		Type:        input.Type,
		Date:        input.Date,
		UserID:      actor.User.ID,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
	}

	err := s.store.RunInTx(ctx, func(tx storage.Store) error {
		return ledger.New(tx).Post(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("transaction posted", "transaction_id", txn.ID, "type", txn.Type, "user_id", txn.UserID)
	return txn, nil
}

// Update rewrites a posted transaction. The old effect is reverted, the new
// one validated and applied; a rejected update leaves the balance exactly
// where it started.
func (s *TransactionService) Update(ctx context.Context, actor *scope.Actor, id string, input TransactionInput) (*models.Transaction, error) {
	oldTxn, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CanMutate(ctx, actor, oldTxn.UserID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if _, err := s.resolveCategory(ctx, actor, input.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.resolveAccount(ctx, actor, input.AccountID); err != nil {
		return nil, err
	}

	newTxn := *oldTxn
	newTxn.Amount = input.Amount
	newTxn.Description = input.Description
	newTxn.Notes = input.Notes
	newTxn.Type = input.Type
	newTxn.Date = input.Date
	newTxn.CategoryID = input.CategoryID
	newTxn.AccountID = input.AccountID

	err = s.store.RunInTx(ctx, func(tx storage.Store) error {
		return ledger.New(tx).Repost(ctx, oldTxn, &newTxn)
	})
	if err != nil {
		return nil, err
	}
	return &newTxn, nil
}

// Delete reverts and removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, actor *scope.Actor, id string) error {
	txn, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.perms.CanMutate(ctx, actor, txn.UserID); err != nil {
		return err
	}
	return s.store.RunInTx(ctx, func(tx storage.Store) error {
		return ledger.New(tx).Delete(ctx, txn)
	})
}

// resolveCategory loads a category and checks the actor may use it. Default
// categories are usable by everyone.
func (s *TransactionService) resolveCategory(ctx context.Context, actor *scope.Actor, id string) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errs.NotFound("category")
	}
	if category.IsDefault {
		return category, nil
	}
	visible, err := s.perms.CanView(ctx, actor, category.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errs.NotFound("category")
	}
	return category, nil
}

// resolveAccount loads an account and checks the actor may post against it.
// Soft-deleted accounts accept no new transactions.
func (s *TransactionService) resolveAccount(ctx context.Context, actor *scope.Actor, id string) (*models.Account, error) {
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
	if !account.IsActive {
		return nil, errs.Validation("account is inactive")
	}
	return account, nil
}
