package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkrish/fintrack/internal/auth"
	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/mail"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// AdminService manages tenants: admins, user groups, managed users, role
// changes, blocking, transaction approval and owner dashboards.
type AdminService struct {
	store  storage.Store
	scopes *scope.Resolver
	perms  *permission.Evaluator
	sender mail.Sender
}

// NewAdminService creates a new AdminService.
func NewAdminService(store storage.Store, scopes *scope.Resolver, perms *permission.Evaluator, sender mail.Sender) *AdminService {
	return &AdminService{store: store, scopes: scopes, perms: perms, sender: sender}
}

// EnsureAdmin returns the Admin record backing the actor, materializing it
// on first use. Only owner and admin-role actors have one; the record links
// to its user by credential match, not by foreign key.
func (s *AdminService) EnsureAdmin(ctx context.Context, actor *scope.Actor) (*models.Admin, error) {
	if actor.Class != scope.Owner && actor.Class != scope.Admin {
		return nil, errs.AccessDenied("only admins can perform this operation")
	}
	if actor.AdminRecord.Provisioned {
		return actor.AdminRecord.Admin, nil
	}

	ownerID := actor.User.ID
	if actor.Class != scope.Owner {
		owners, err := s.store.ListUsersByRole(ctx, models.RoleOwner)
		if err != nil {
			return nil, err
		}
		if len(owners) == 0 {
			return nil, errs.Fatal("no owner user exists")
		}
		ownerID = owners[0].ID
	}

	admin := &models.Admin{
		Username:    actor.User.Username,
		Email:       actor.User.Email,
		OwnerUserID: ownerID,
		IsActive:    true,
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	actor.AdminRecord = scope.AdminLookup{Admin: admin, Provisioned: true}
	slog.Info("admin record provisioned", "admin_id", admin.ID, "username", admin.Username)
	return admin, nil
}

// ListUsers returns the USER-role accounts the actor manages: every user for
// the owner, direct and group-managed users for an admin.
func (s *AdminService) ListUsers(ctx context.Context, actor *scope.Actor) ([]*models.User, error) {
	switch actor.Class {
	case scope.Owner:
		return s.store.ListUsersByRole(ctx, models.RoleUser)
	case scope.Admin:
		if !actor.AdminRecord.Provisioned {
			return nil, nil
		}
		admin := actor.AdminRecord.Admin

		seen := make(map[string]bool)
		var users []*models.User
		add := func(list []*models.User) {
			for _, u := range list {
				if !seen[u.ID] {
					seen[u.ID] = true
					users = append(users, u)
				}
			}
		}

		direct, err := s.store.ListUsersByAdmin(ctx, admin.ID)
		if err != nil {
			return nil, err
		}
		add(direct)

		groups, err := s.store.ListGroupsByAdmin(ctx, admin.ID)
		if err != nil {
			return nil, err
		}
		for _, group := range groups {
			members, err := s.store.ListUsersByGroup(ctx, group.ID)
			if err != nil {
				return nil, err
			}
			add(members)
		}
		return users, nil
	}
	return nil, errs.AccessDenied("only admins can list users")
}

// CreateUser registers a USER-role account directly managed by the actor's
// admin record.
func (s *AdminService) CreateUser(ctx context.Context, actor *scope.Actor, input auth.RegisterInput) (*models.User, error) {
	admin, err := s.EnsureAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, errs.Validation("%s", err)
	}
	if existing, err := s.store.GetUserByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errs.Validation("username %q already registered", input.Username)
	}
	if existing, err := s.store.GetUserByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errs.Validation("email %q already registered", input.Email)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         models.RoleUser,
		AdminID:      admin.ID,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("managed user created", "user_id", user.ID, "admin_id", admin.ID)
	return user, nil
}

// manages reports whether the actor may administer the target user: the
// owner always may; an admin may when the target is directly managed or
// belongs to a group the admin owns.
func (s *AdminService) manages(ctx context.Context, actor *scope.Actor, target *models.User) (bool, error) {
	if actor.Class == scope.Owner {
		return true, nil
	}
	if actor.Class != scope.Admin || !actor.AdminRecord.Provisioned {
		return false, nil
	}
	admin := actor.AdminRecord.Admin
	if target.AdminID == admin.ID {
		return true, nil
	}
	if target.GroupID != "" {
		group, err := s.store.GetGroup(ctx, target.GroupID)
		if err != nil {
			return false, err
		}
		if group != nil && group.AdminID == admin.ID {
			return true, nil
		}
	}
	return false, nil
}

func (s *AdminService) managedUser(ctx context.Context, actor *scope.Actor, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user")
	}
	ok, err := s.manages(ctx, actor, user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("user")
	}
	return user, nil
}

// DeleteUser removes a managed user and their personal data. Transactions
// are kept for history with the author reference cleared; everything else
// the user owned is deleted. The cascade runs in one storage transaction.
func (s *AdminService) DeleteUser(ctx context.Context, actor *scope.Actor, userID string) error {
	user, err := s.managedUser(ctx, actor, userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleUser {
		return errs.AccessDenied("only USER-role accounts can be deleted")
	}

	err = s.store.RunInTx(ctx, func(tx storage.Store) error {
		if err := tx.DeleteResetTokensByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.ClearTransactionOwner(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeleteRecurringByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeleteBudgetsByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeleteCategoriesByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeleteAccountsByUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", user.ID, "deleted_by", actor.User.ID)
	return nil
}

// ChangeRole changes a user's role. An elevated user keeps no tenant
// references: promotion clears the admin and group assignment in the same
// storage transaction. The notification mail is best-effort.
func (s *AdminService) ChangeRole(ctx context.Context, actor *scope.Actor, userID string, newRole models.Role) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user")
	}
	if err := s.perms.CheckRoleChange(actor, user, newRole); err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(tx storage.Store) error {
		user.Role = newRole
		if newRole == models.RoleAdmin {
			user.AdminID = ""
			user.GroupID = ""
		}
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	subject := "Your account role changed"
	body := fmt.Sprintf("Hi %s,\n\nYour account role is now %s.\n", user.FirstName, user.Role)
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		slog.Error("failed to send role change mail", "user_id", user.ID, "error", err)
	}

	slog.Info("user role changed", "user_id", user.ID, "role", newRole)
	return user, nil
}

// SetBlocked blocks or unblocks a managed user. Blocked users cannot log in;
// their data stays visible to their admin.
func (s *AdminService) SetBlocked(ctx context.Context, actor *scope.Actor, userID string, blocked bool) (*models.User, error) {
	user, err := s.managedUser(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.CheckBlock(user, blocked); err != nil {
		return nil, err
	}

	user.Blocked = blocked
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("user block state changed", "user_id", user.ID, "blocked", blocked)
	return user, nil
}

// CreateAdminUser registers an ADMIN-role user together with its Admin
// record. Owner only.
func (s *AdminService) CreateAdminUser(ctx context.Context, actor *scope.Actor, input auth.RegisterInput) (*models.User, error) {
	if actor.Class != scope.Owner {
		return nil, errs.AccessDenied("only the owner can create admins")
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, errs.Validation("%s", err)
	}
	if existing, err := s.store.GetUserByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errs.Validation("username %q already registered", input.Username)
	}
	if existing, err := s.store.GetUserByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errs.Validation("email %q already registered", input.Email)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         models.RoleAdmin,
	}
	err = s.store.RunInTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.CreateAdmin(ctx, &models.Admin{
			Username:    user.Username,
			Email:       user.Email,
			OwnerUserID: actor.User.ID,
			IsActive:    true,
		})
	})
	if err != nil {
		return nil, err
	}
	slog.Info("admin created", "user_id", user.ID, "created_by", actor.User.ID)
	return user, nil
}

// ListAdmins returns the ADMIN-role users. Owner only.
func (s *AdminService) ListAdmins(ctx context.Context, actor *scope.Actor) ([]*models.User, error) {
	if actor.Class != scope.Owner {
		return nil, errs.AccessDenied("only the owner can list admins")
	}
	return s.store.ListUsersByRole(ctx, models.RoleAdmin)
}

// DeleteAdmin removes an Admin record. Owner only; an admin still managing
// users or groups must be relieved first.
func (s *AdminService) DeleteAdmin(ctx context.Context, actor *scope.Actor, adminID string) error {
	if actor.Class != scope.Owner {
		return errs.AccessDenied("only the owner can delete admins")
	}
	admin, err := s.store.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return errs.NotFound("admin")
	}

	managed, err := s.store.ListUsersByAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if len(managed) > 0 {
		return errs.Validation("admin still manages %d users", len(managed))
	}
	groups, err := s.store.ListGroupsByAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if len(groups) > 0 {
		return errs.Validation("admin still owns %d groups", len(groups))
	}
	return s.store.DeleteAdmin(ctx, adminID)
}

// CreateGroup creates a user group owned by the actor's admin record,
// materializing the record if needed. The admin's own user never carries a
// group assignment; group scope reaches the admin through the credential
// link instead.
func (s *AdminService) CreateGroup(ctx context.Context, actor *scope.Actor, name, description string) (*models.UserGroup, error) {
	admin, err := s.EnsureAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.Validation("group name is required")
	}

	group := &models.UserGroup{
		Name:        name,
		Description: description,
		AdminID:     admin.ID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	slog.Info("group created", "group_id", group.ID, "admin_id", admin.ID)
	return group, nil
}

// AssignUserToGroup places a managed USER-role account in a group, or
// removes it when groupID is empty. Only the group's admin or the owner may
// assign.
func (s *AdminService) AssignUserToGroup(ctx context.Context, actor *scope.Actor, userID, groupID string) (*models.User, error) {
	user, err := s.managedUser(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleUser {
		return nil, errs.Validation("only USER-role accounts can join groups")
	}

	if groupID != "" {
		group, err := s.store.GetGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, errs.NotFound("group")
		}
		if actor.Class != scope.Owner && !actor.AdministersGroup(group.AdminID) {
			return nil, errs.AccessDenied("you don't administer this group")
		}
	}

	user.GroupID = groupID
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListGroups returns every group for the owner and the actor's own groups
// for an admin.
func (s *AdminService) ListGroups(ctx context.Context, actor *scope.Actor) ([]*models.UserGroup, error) {
	switch actor.Class {
	case scope.Owner:
		return s.store.ListGroups(ctx)
	case scope.Admin:
		if !actor.AdminRecord.Provisioned {
			return nil, nil
		}
		return s.store.ListGroupsByAdmin(ctx, actor.AdminRecord.Admin.ID)
	}
	return nil, errs.AccessDenied("only admins can list groups")
}

// GroupMembers returns the USER-role members of a group. Visible to the
// owner, the group's admin, and the group's own members.
func (s *AdminService) GroupMembers(ctx context.Context, actor *scope.Actor, groupID string) ([]*models.User, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errs.NotFound("group")
	}

	allowed := actor.Class == scope.Owner ||
		actor.AdministersGroup(group.AdminID) ||
		(actor.Class == scope.GroupMember && actor.Group.ID == group.ID)
	if !allowed {
		return nil, errs.NotFound("group")
	}

	members, err := s.store.ListUsersByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	users := members[:0]
	for _, m := range members {
		if m.Role == models.RoleUser {
			users = append(users, m)
		}
	}
	return users, nil
}

// ApproveTransaction marks a managed user's transaction approved. Allowed
// for the owner and for the admin managing the transaction's author.
func (s *AdminService) ApproveTransaction(ctx context.Context, actor *scope.Actor, txnID string) (*models.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errs.NotFound("transaction")
	}

	if actor.Class != scope.Owner {
		if txn.UserID == "" {
			return nil, errs.NotFound("transaction")
		}
		author, err := s.store.GetUser(ctx, txn.UserID)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return nil, errs.NotFound("transaction")
		}
		ok, err := s.manages(ctx, actor, author)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.AccessDenied("you don't manage this transaction's author")
		}
	}

	if txn.IsApproved {
		return nil, errs.Validation("transaction is already approved")
	}
	txn.IsApproved = true
	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	slog.Info("transaction approved", "transaction_id", txn.ID, "approved_by", actor.User.ID)
	return txn, nil
}

// MessageUsers sends a mail to each listed recipient the actor manages.
// Recipients outside the actor's management scope are skipped, and a
// delivery failure to one recipient never blocks the rest; the return value
// is the number of mails actually handed to the sender.
func (s *AdminService) MessageUsers(ctx context.Context, actor *scope.Actor, userIDs []string, subject, body string) (int, error) {
	if actor.Class != scope.Owner && actor.Class != scope.Admin {
		return 0, errs.AccessDenied("only admins can message users")
	}
	if subject == "" || body == "" {
		return 0, errs.Validation("subject and message are required")
	}

	sent := 0
	for _, id := range userIDs {
		user, err := s.store.GetUser(ctx, id)
		if err != nil {
			return sent, err
		}
		if user == nil {
			continue
		}
		ok, err := s.manages(ctx, actor, user)
		if err != nil {
			return sent, err
		}
		if !ok {
			slog.Warn("message recipient outside management scope", "user_id", id, "sender", actor.User.ID)
			continue
		}
		if err := s.sender.Send(ctx, user.Email, subject, s.messageBody(actor, user, body)); err != nil {
			slog.Error("failed to send message", "user_id", user.ID, "error", err)
			continue
		}
		sent++
	}
	slog.Info("users messaged", "sent", sent, "requested", len(userIDs), "sender", actor.User.ID)
	return sent, nil
}

// MessageRole broadcasts a mail to every user holding the given role. Owner
// only; the owner role itself is not a broadcast target.
func (s *AdminService) MessageRole(ctx context.Context, actor *scope.Actor, role models.Role, subject, body string) (int, error) {
	if actor.Class != scope.Owner {
		return 0, errs.AccessDenied("only the owner can broadcast by role")
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return 0, errs.Validation("invalid broadcast role %q", role)
	}
	if subject == "" || body == "" {
		return 0, errs.Validation("subject and message are required")
	}

	users, err := s.store.ListUsersByRole(ctx, role)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, user := range users {
		if err := s.sender.Send(ctx, user.Email, subject, s.messageBody(actor, user, body)); err != nil {
			slog.Error("failed to send broadcast", "user_id", user.ID, "error", err)
			continue
		}
		sent++
	}
	slog.Info("role broadcast sent", "role", role, "sent", sent, "sender", actor.User.ID)
	return sent, nil
}

func (s *AdminService) messageBody(actor *scope.Actor, recipient *models.User, body string) string {
	name := recipient.FirstName
	if name == "" {
		name = recipient.Username
	}
	return fmt.Sprintf("Hello %s,\n\n%s\n\n--\nSent by %s\n", name, body, actor.User.Username)
}

// CategorySpend is one category's expense total within a dashboard window.
type CategorySpend struct {
	CategoryID string
	Name       string
	Total      decimal.Decimal
}

// MonthlySpend is one calendar month's expense total, keyed "2006-01".
type MonthlySpend struct {
	Month string
	Total decimal.Decimal
}

// DashboardStats aggregates transactions over a date range.
type DashboardStats struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	Net              decimal.Decimal
	TransactionCount int

	// CategorySpending breaks expenses down by category, largest first.
	CategorySpending []CategorySpend

	// MonthlyTrend breaks expenses down by calendar month, ascending.
	MonthlyTrend []MonthlySpend
}

// dashboardScope is the user-ID set dashboard aggregates run over. It
// follows the actor's visibility, except for the owner: a global aggregate
// would mix every tenant's money, so the owner's dashboard narrows to their
// own records.
func (s *AdminService) dashboardScope(ctx context.Context, actor *scope.Actor) ([]string, error) {
	if actor.Class == scope.Owner {
		return s.scopes.PersonalUserIDs(actor), nil
	}
	return s.scopes.VisibleUserIDs(ctx, actor)
}

// Dashboard computes income/expense totals, the per-category expense
// breakdown and the monthly expense trend over the given filter window.
func (s *AdminService) Dashboard(ctx context.Context, actor *scope.Actor, filter storage.TransactionFilter) (*DashboardStats, error) {
	userIDs, err := s.dashboardScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactionsForUsers(ctx, userIDs, filter)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TransactionCount: len(txns)}
	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		if txn.Type == models.Income {
			stats.TotalIncome = stats.TotalIncome.Add(txn.Amount)
			continue
		}
		stats.TotalExpense = stats.TotalExpense.Add(txn.Amount)
		byCategory[txn.CategoryID] = byCategory[txn.CategoryID].Add(txn.Amount)
		month := txn.Date.Format("2006-01")
		byMonth[month] = byMonth[month].Add(txn.Amount)
	}
	stats.Net = stats.TotalIncome.Sub(stats.TotalExpense)

	names := make(map[string]string)
	for id := range byCategory {
		if id == "" {
			names[id] = "uncategorized"
			continue
		}
		category, err := s.store.GetCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		if category == nil {
			names[id] = "uncategorized"
		} else {
			names[id] = category.Name
		}
	}
	for id, total := range byCategory {
		stats.CategorySpending = append(stats.CategorySpending, CategorySpend{
			CategoryID: id,
			Name:       names[id],
			Total:      total,
		})
	}
	sort.Slice(stats.CategorySpending, func(i, j int) bool {
		a, b := stats.CategorySpending[i], stats.CategorySpending[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Name < b.Name
	})

	for month, total := range byMonth {
		stats.MonthlyTrend = append(stats.MonthlyTrend, MonthlySpend{Month: month, Total: total})
	}
	sort.Slice(stats.MonthlyTrend, func(i, j int) bool {
		return stats.MonthlyTrend[i].Month < stats.MonthlyTrend[j].Month
	})

	return stats, nil
}

// BudgetStatus reports one active budget's consumption: how much of it the
// scoped expenses have used, and whether the alert threshold or the budget
// itself has been crossed.
type BudgetStatus struct {
	Budget     *models.Budget
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
	OverBudget bool
	NearLimit  bool
}

// BudgetStatuses evaluates the actor's own budgets that are active today.
// Spending against each budget follows the dashboard scope, so a group
// admin's budget tracks the whole group's expenses while a standalone
// user's tracks only their own.
func (s *AdminService) BudgetStatuses(ctx context.Context, actor *scope.Actor) ([]*BudgetStatus, error) {
	budgets, err := s.store.ListBudgetsForUsers(ctx, s.scopes.PersonalUserIDs(actor))
	if err != nil {
		return nil, err
	}
	userIDs, err := s.dashboardScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	hundred := decimal.NewFromInt(100)
	var statuses []*BudgetStatus
	for _, budget := range budgets {
		if !budget.IsActive || budget.StartDate.After(today) || budget.EndDate.Before(today) {
			continue
		}

		txns, err := s.store.ListTransactionsForUsers(ctx, userIDs, storage.TransactionFilter{
			From:       budget.StartDate,
			To:         budget.EndDate,
			CategoryID: budget.CategoryID,
		})
		if err != nil {
			return nil, err
		}
		spent := decimal.Zero
		for _, txn := range txns {
			if txn.Type == models.Expense {
				spent = spent.Add(txn.Amount)
			}
		}

		percentage := spent.Div(budget.Amount).Mul(hundred).Round(2)
		statuses = append(statuses, &BudgetStatus{
			Budget:     budget,
			Spent:      spent,
			Remaining:  budget.Amount.Sub(spent),
			Percentage: percentage,
			OverBudget: spent.GreaterThan(budget.Amount),
			NearLimit:  percentage.GreaterThanOrEqual(decimal.NewFromInt(int64(budget.AlertThreshold))),
		})
	}
	return statuses, nil
}
