// Package permission produces mutation verdicts for a resolved actor
// against a target record.
//
// Visibility never implies mutability: a group member can view a peer's
// records through group scope yet gets read-only access. Mutation is allowed
// only for the record's direct owner, for an admin administering the group
// the record owner belongs to, or for the deployment owner.
package permission

import (
	"context"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// Evaluator answers view/mutate/create questions.
type Evaluator struct {
	store  storage.Store
	scopes *scope.Resolver
}

// NewEvaluator creates an Evaluator over the given store and scope resolver.
func NewEvaluator(store storage.Store, scopes *scope.Resolver) *Evaluator {
	return &Evaluator{store: store, scopes: scopes}
}

// CanView reports whether records authored by ownerUserID are visible to the
// actor. Callers handle entity-specific widenings themselves (default
// categories are visible to everyone; transaction approval adds the admin's
// owner).
func (e *Evaluator) CanView(ctx context.Context, actor *scope.Actor, ownerUserID string) (bool, error) {
	return e.scopes.CanSeeUser(ctx, actor, ownerUserID)
}

// CanMutate returns nil if the actor may update or delete a record authored
// by ownerUserID, and an access-denied error otherwise. The rule is uniform
// across accounts, budgets, categories, transactions and recurring
// schedules.
func (e *Evaluator) CanMutate(ctx context.Context, actor *scope.Actor, ownerUserID string) error {
	if actor.Class == scope.Owner {
		return nil
	}
	if ownerUserID != "" && ownerUserID == actor.User.ID {
		return nil
	}

	// An admin may mutate records of users belonging to a group it
	// administers.
	if actor.User.Role == models.RoleAdmin && actor.AdminRecord.Provisioned && ownerUserID != "" {
		owner, err := e.store.GetUser(ctx, ownerUserID)
		if err != nil {
			return err
		}
		if owner != nil && owner.GroupID != "" {
			group, err := e.store.GetGroup(ctx, owner.GroupID)
			if err != nil {
				return err
			}
			if group != nil && actor.AdministersGroup(group.AdminID) {
				return nil
			}
		}
	}

	return errs.AccessDenied("you don't have permission to modify this record")
}

// CanCreate gates creation of accounts, budgets, categories and recurring
// schedules (transactions are exempt). Group members may create only when
// they are the admin matched to their group; elevated roles and non-grouped
// users always may.
func (e *Evaluator) CanCreate(ctx context.Context, actor *scope.Actor) error {
	switch actor.Class {
	case scope.Owner, scope.Admin, scope.Standalone:
		return nil
	case scope.GroupMember:
		// A group member whose credentials match the Admin record owning
		// the group creates on behalf of the group.
		admin, err := e.store.GetAdminByUsernameOrEmail(ctx, actor.User.Username, actor.User.Email)
		if err != nil {
			return err
		}
		if admin != nil && admin.ID == actor.Group.AdminID {
			return nil
		}
		return errs.AccessDenied("group members cannot create records, only group admins can")
	}
	return errs.Fatal("unknown actor class %d", actor.Class)
}

// CheckRoleChange validates a role-change request. Only the owner may change
// roles; the owner's own role is immutable; setting the current role again
// is a redundant-operation error, not a silent success.
func (e *Evaluator) CheckRoleChange(actor *scope.Actor, target *models.User, newRole models.Role) error {
	if actor.Class != scope.Owner {
		return errs.AccessDenied("only the owner can change user roles")
	}
	if target.Role == models.RoleOwner {
		return errs.AccessDenied("the owner role cannot be changed")
	}
	switch newRole {
	case models.RoleAdmin, models.RoleUser:
	default:
		return errs.Validation("invalid role %q", newRole)
	}
	if target.Role == newRole {
		return errs.Validation("user already has role %s", newRole)
	}
	return nil
}

// CheckBlock validates a block or unblock request against the target's
// current state. Only USER-role accounts can be blocked, and repeating the
// current state is a redundant-operation error.
func (e *Evaluator) CheckBlock(target *models.User, block bool) error {
	if target.Role != models.RoleUser {
		return errs.AccessDenied("cannot block admin or owner users")
	}
	if block && target.Blocked {
		return errs.Validation("user is already blocked")
	}
	if !block && !target.Blocked {
		return errs.Validation("user is not blocked")
	}
	return nil
}
