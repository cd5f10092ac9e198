// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mkrish/fintrack/internal/models"
)

// TransactionFilter narrows transaction listings. Zero fields are ignored.
type TransactionFilter struct {
	From       time.Time
	To         time.Time
	CategoryID string
	AccountID  string
}

// Store defines the persistence operations the engine depends on. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine or service layers.
//
// List methods taking a userIDs slice filter to records authored by those
// users; a nil slice means no user filter (global scope). Get methods return
// (nil, nil) when the record is absent so callers decide how absence maps to
// the error taxonomy.
type Store interface {
	// RunInTx runs fn against a store whose operations share one database
	// transaction. The transaction commits if fn returns nil and rolls back
	// otherwise. Calls nest: inside a transaction, RunInTx reuses it.
	RunInTx(ctx context.Context, fn func(Store) error) error

	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	ListUsersByAdmin(ctx context.Context, adminID string) ([]*models.User, error)
	ListUsersByGroup(ctx context.Context, groupID string) ([]*models.User, error)

	// Admins.
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	GetAdminByUsernameOrEmail(ctx context.Context, username, email string) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id string) error

	// User groups.
	CreateGroup(ctx context.Context, group *models.UserGroup) error
	GetGroup(ctx context.Context, id string) (*models.UserGroup, error)
	ListGroups(ctx context.Context) ([]*models.UserGroup, error)
	ListGroupsByAdmin(ctx context.Context, adminID string) ([]*models.UserGroup, error)

	// Accounts.
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	ListAccountsForUsers(ctx context.Context, userIDs []string) ([]*models.Account, error)
	DeleteAccountsByUser(ctx context.Context, userID string) error

	// Categories.
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListDefaultCategories(ctx context.Context) ([]*models.Category, error)
	ListCategoriesForUsers(ctx context.Context, userIDs []string) ([]*models.Category, error)
	CategoryNameExists(ctx context.Context, name, userID string) (bool, error)
	DeleteCategoriesByUser(ctx context.Context, userID string) error

	// Budgets.
	CreateBudget(ctx context.Context, budget *models.Budget) error
	GetBudget(ctx context.Context, id string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	ListBudgetsForUsers(ctx context.Context, userIDs []string) ([]*models.Budget, error)
	DeleteBudgetsByUser(ctx context.Context, userID string) error

	// Transactions.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactionsForUsers(ctx context.Context, userIDs []string, filter TransactionFilter) ([]*models.Transaction, error)
	ClearTransactionOwner(ctx context.Context, userID string) error

	// Recurring schedules.
	CreateRecurring(ctx context.Context, rec *models.RecurringTransaction) error
	GetRecurring(ctx context.Context, id string) (*models.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, rec *models.RecurringTransaction) error
	DeleteRecurring(ctx context.Context, id string) error
	ListRecurringForUsers(ctx context.Context, userIDs []string, activeOnly bool) ([]*models.RecurringTransaction, error)
	ListRecurringOwners(ctx context.Context) ([]string, error)
	ListDueRecurring(ctx context.Context, userID string, today time.Time) ([]*models.RecurringTransaction, error)
	DeleteRecurringByUser(ctx context.Context, userID string) error

	// Password reset tokens.
	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error
	GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, token string) error
	DeleteResetTokensByUser(ctx context.Context, userID string) error
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) error

	// Close releases any resources held by the store.
	Close() error
}
