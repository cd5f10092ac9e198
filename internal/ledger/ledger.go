// Package ledger maintains account balances under transaction post, revert
// and repost.
//
// The invariant: an account's balance always equals its initial balance plus
// the net signed effect of every transaction currently posted against it.
// The balance is mutated by exactly the signed delta on post and exactly the
// negated delta on revert; it is never recomputed as an aggregate. Callers
// wrap each mutating operation in storage.Store.RunInTx so the balance write
// and the record write land atomically.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/metrics"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

// Ledger applies transaction effects to account balances.
type Ledger struct {
	store storage.Store
}

// New creates a Ledger over the given store.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// Apply mutates the account balance by the signed effect of the amount and
// type (income adds, expense subtracts) and persists the account.
func (l *Ledger) Apply(ctx context.Context, account *models.Account, amount decimal.Decimal, t models.TransactionType) error {
	if t == models.Income {
		account.Balance = account.Balance.Add(amount)
	} else {
		account.Balance = account.Balance.Sub(amount)
	}
	return l.store.UpdateAccount(ctx, account)
}

func (l *Ledger) account(ctx context.Context, id string) (*models.Account, error) {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errs.NotFound("account")
	}
	return account, nil
}

// Post validates and applies a transaction's effect on its account, then
// persists the transaction. Expenses require the account balance to cover
// the amount; the rejection carries the available balance. Income has no
// precondition.
func (l *Ledger) Post(ctx context.Context, txn *models.Transaction) error {
	account, err := l.account(ctx, txn.AccountID)
	if err != nil {
		return err
	}
	if txn.Type == models.Expense && account.Balance.LessThan(txn.Amount) {
		metrics.InsufficientFunds.Inc()
		return &errs.InsufficientFundsError{Available: account.Balance}
	}
	if err := l.Apply(ctx, account, txn.Amount, txn.Type); err != nil {
		return err
	}
	if err := l.store.CreateTransaction(ctx, txn); err != nil {
		return err
	}
	metrics.TransactionsPosted.WithLabelValues(string(txn.Type)).Inc()
	return nil
}

// Revert undoes a posted transaction's effect on its account by applying
// the opposite type with the same amount. The transaction record itself is
// left to the caller (deletes remove it, reposts rewrite it). Reverting a
// transaction whose account has been deleted is a no-op: there is no
// balance left to restore.
func (l *Ledger) Revert(ctx context.Context, txn *models.Transaction) error {
	if txn.AccountID == "" {
		return nil
	}
	account, err := l.account(ctx, txn.AccountID)
	if err != nil {
		return err
	}
	if err := l.Apply(ctx, account, txn.Amount, txn.Type.Opposite()); err != nil {
		return err
	}
	metrics.TransactionsReverted.Inc()
	return nil
}

// Repost updates a posted transaction under the strict revert-old →
// validate-new → apply-new sequence. When the new expense fails validation
// the old effect is restored, so the balance ends exactly at its pre-update
// value rather than the reverted-only one.
func (l *Ledger) Repost(ctx context.Context, oldTxn, newTxn *models.Transaction) error {
	if err := l.Revert(ctx, oldTxn); err != nil {
		return err
	}

	account, err := l.account(ctx, newTxn.AccountID)
	if err != nil {
		return err
	}
	if newTxn.Type == models.Expense && account.Balance.LessThan(newTxn.Amount) {
		metrics.InsufficientFunds.Inc()
		rejection := &errs.InsufficientFundsError{Available: account.Balance}
		// Restore the reverted effect before reporting the failure. An
		// orphaned entry had no effect to revert, so there is nothing to
		// restore either.
		if oldTxn.AccountID != "" {
			oldAccount, err := l.account(ctx, oldTxn.AccountID)
			if err != nil {
				return err
			}
			if err := l.Apply(ctx, oldAccount, oldTxn.Amount, oldTxn.Type); err != nil {
				return err
			}
		}
		return rejection
	}

	if err := l.Apply(ctx, account, newTxn.Amount, newTxn.Type); err != nil {
		return err
	}
	if err := l.store.UpdateTransaction(ctx, newTxn); err != nil {
		return err
	}
	metrics.TransactionsPosted.WithLabelValues(string(newTxn.Type)).Inc()
	return nil
}

// Delete reverts the transaction's effect and removes the record entirely.
// Unlike accounts and budgets, transactions have no soft delete.
func (l *Ledger) Delete(ctx context.Context, txn *models.Transaction) error {
	if err := l.Revert(ctx, txn); err != nil {
		return err
	}
	return l.store.DeleteTransaction(ctx, txn.ID)
}
