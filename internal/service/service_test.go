package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/mail"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/schedule"
	"github.com/mkrish/fintrack/internal/scope"
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

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixture wires real services over a temp sqlite store with the canonical
// tenant graph: owner, provisioned admin with a two-member group, and a
// standalone user.
type fixture struct {
	store    storage.Store
	resolver *scope.Resolver
	perms    *permission.Evaluator

	transactions *TransactionService
	accounts     *AccountService
	categories   *CategoryService
	budgets      *BudgetService
	recurring    *RecurringService
	admins       *AdminService

	owner      *models.User
	adminUser  *models.User
	admin      *models.Admin
	group      *models.UserGroup
	member     *models.User
	peer       *models.User
	standalone *models.User

	defaultCategory *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	f := &fixture{store: store, resolver: scope.NewResolver(store)}
	f.perms = permission.NewEvaluator(store, f.resolver)
	f.transactions = NewTransactionService(store, f.resolver, f.perms)
	f.accounts = NewAccountService(store, f.resolver, f.perms)
	f.categories = NewCategoryService(store, f.resolver, f.perms)
	f.budgets = NewBudgetService(store, f.resolver, f.perms)
	f.recurring = NewRecurringService(store, f.resolver, f.perms, schedule.New(store))
	f.admins = NewAdminService(store, f.resolver, f.perms, mail.LogSender{})

	f.owner = f.newUser(t, "root", models.RoleOwner)
	f.adminUser = f.newUser(t, "chief", models.RoleAdmin)
	f.standalone = f.newUser(t, "loner", models.RoleUser)

	f.admin = &models.Admin{Username: "chief", Email: "chief@example.com", OwnerUserID: f.owner.ID, IsActive: true}
	if err := store.CreateAdmin(ctx, f.admin); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	f.group = &models.UserGroup{Name: "household", AdminID: f.admin.ID}
	if err := store.CreateGroup(ctx, f.group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	f.member = f.newUser(t, "m1", models.RoleUser)
	f.member.GroupID = f.group.ID
	f.peer = f.newUser(t, "m2", models.RoleUser)
	f.peer.GroupID = f.group.ID
	for _, u := range []*models.User{f.member, f.peer} {
		if err := store.UpdateUser(ctx, u); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
	}

	f.defaultCategory = &models.Category{Name: "General", IsDefault: true}
	if err := store.CreateCategory(ctx, f.defaultCategory); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	return f
}

func (f *fixture) newUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	if err := f.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func (f *fixture) actor(t *testing.T, user *models.User) *scope.Actor {
	t.Helper()
	actor, err := f.resolver.ResolveActor(context.Background(), user)
	if err != nil {
		t.Fatalf("ResolveActor(%s) failed: %v", user.Username, err)
	}
	return actor
}

// openAccount creates an account directly in the store, bypassing creation
// gating, so fixtures can give group members accounts to transact against.
func (f *fixture) openAccount(t *testing.T, user *models.User, balance string) *models.Account {
	t.Helper()
	account := &models.Account{
		Name:     user.Username + "-main",
		UserID:   user.ID,
		Balance:  amount(balance),
		IsActive: true,
	}
	if err := f.store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return account
}

func (f *fixture) post(t *testing.T, user *models.User, account *models.Account, amt string) *models.Transaction {
	t.Helper()
	txn, err := f.transactions.Create(context.Background(), f.actor(t, user), TransactionInput{
		Amount:     amount(amt),
		Type:       models.Expense,
		Date:       day("2024-06-01"),
		CategoryID: f.defaultCategory.ID,
		AccountID:  account.ID,
	})
	if err != nil {
		t.Fatalf("Create transaction failed: %v", err)
	}
	return txn
}
