// Package scope classifies the authenticated actor and computes record
// visibility.
//
// Every request resolves its actor exactly once into a closed class
// (Owner, Admin, GroupMember, Standalone); downstream components switch on
// the class instead of re-inspecting role strings. Visibility is expressed
// as the set of user IDs whose records the actor may see, which the storage
// layer turns into filtered queries. A nil ID set means global scope.
package scope

import (
	"context"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
)

// Class is the closed set of actor classes.
type Class int

const (
	// Owner is the deployment super-actor: global visibility.
	Owner Class = iota
	// Admin is a tenant boundary: sees own records plus those of directly
	// managed users and users in managed groups.
	Admin
	// GroupMember is a USER-role actor assigned to a group: sees records of
	// everyone in the group.
	GroupMember
	// Standalone is a USER-role actor with no admin and no group: sees own
	// records only.
	Standalone
)

func (c Class) String() string {
	switch c {
	case Owner:
		return "owner"
	case Admin:
		return "admin"
	case GroupMember:
		return "group-member"
	case Standalone:
		return "standalone"
	}
	return "unknown"
}

// AdminLookup is the explicit two-state result of resolving the Admin record
// behind an ADMIN-role user. Provisioned is false while the record has not
// been materialized yet; callers must then degrade to personal-only scope
// rather than fail.
type AdminLookup struct {
	Admin       *models.Admin
	Provisioned bool
}

// Actor is the resolved per-request principal. It is computed once by
// ResolveActor and passed explicitly into every visibility and permission
// call; there is no ambient current-user state.
type Actor struct {
	User  *models.User
	Class Class

	// AdminRecord is set for Class == Admin (and for owners who have one).
	AdminRecord AdminLookup

	// Group is set for Class == GroupMember.
	Group *models.UserGroup
}

// AdministersGroup reports whether the actor's admin record owns the group
// with the given admin ID.
func (a *Actor) AdministersGroup(groupAdminID string) bool {
	return a.AdminRecord.Provisioned && a.AdminRecord.Admin.ID == groupAdminID
}

// Resolver computes actors and visibility sets from stored identity state.
type Resolver struct {
	store storage.Store
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store storage.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveActor classifies the authenticated user. Evaluated in strict
// priority order: owner role, admin role, group membership, standalone.
func (r *Resolver) ResolveActor(ctx context.Context, user *models.User) (*Actor, error) {
	switch user.Role {
	case models.RoleOwner:
		actor := &Actor{User: user, Class: Owner}
		// Owners that have created groups carry an admin record too.
		admin, err := r.store.GetAdminByUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return nil, err
		}
		actor.AdminRecord = AdminLookup{Admin: admin, Provisioned: admin != nil}
		return actor, nil

	case models.RoleAdmin:
		admin, err := r.store.GetAdminByUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return nil, err
		}
		return &Actor{
			User:        user,
			Class:       Admin,
			AdminRecord: AdminLookup{Admin: admin, Provisioned: admin != nil},
		}, nil

	case models.RoleUser:
		if user.GroupID != "" {
			group, err := r.store.GetGroup(ctx, user.GroupID)
			if err != nil {
				return nil, err
			}
			if group != nil {
				return &Actor{User: user, Class: GroupMember, Group: group}, nil
			}
			// Dangling group reference degrades to standalone.
		}
		return &Actor{User: user, Class: Standalone}, nil
	}

	return nil, errs.Fatal("unknown user role %q", user.Role)
}

// VisibleUserIDs returns the IDs of users whose records the actor may see,
// deduplicated in first-seen order. A nil result means global scope (owner).
//
// Group scope includes every user assigned to the group, the group admin's
// own user record among them; this single policy holds across list, detail
// and aggregate paths.
func (r *Resolver) VisibleUserIDs(ctx context.Context, actor *Actor) ([]string, error) {
	switch actor.Class {
	case Owner:
		return nil, nil

	case Admin:
		if !actor.AdminRecord.Provisioned {
			// Admin record not yet materialized: personal-only scope.
			return []string{actor.User.ID}, nil
		}
		admin := actor.AdminRecord.Admin

		seen := map[string]bool{actor.User.ID: true}
		ids := []string{actor.User.ID}
		add := func(users []*models.User) {
			for _, u := range users {
				if !seen[u.ID] {
					seen[u.ID] = true
					ids = append(ids, u.ID)
				}
			}
		}

		direct, err := r.store.ListUsersByAdmin(ctx, admin.ID)
		if err != nil {
			return nil, err
		}
		add(direct)

		groups, err := r.store.ListGroupsByAdmin(ctx, admin.ID)
		if err != nil {
			return nil, err
		}
		for _, group := range groups {
			members, err := r.store.ListUsersByGroup(ctx, group.ID)
			if err != nil {
				return nil, err
			}
			add(members)
		}
		return ids, nil

	case GroupMember:
		members, err := r.store.ListUsersByGroup(ctx, actor.Group.ID)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(members)+2)
		var ids []string
		for _, m := range members {
			if !seen[m.ID] {
				seen[m.ID] = true
				ids = append(ids, m.ID)
			}
		}
		if !seen[actor.User.ID] {
			seen[actor.User.ID] = true
			ids = append(ids, actor.User.ID)
		}
		// The group admin's personal records are part of group scope even
		// though the admin's user record carries no group assignment.
		adminUser, err := r.groupAdminUser(ctx, actor.Group)
		if err != nil {
			return nil, err
		}
		if adminUser != nil && !seen[adminUser.ID] {
			ids = append(ids, adminUser.ID)
		}
		return ids, nil

	case Standalone:
		return []string{actor.User.ID}, nil
	}

	return nil, errs.Fatal("unknown actor class %d", actor.Class)
}

// groupAdminUser resolves the user record backing the group's Admin, linked
// by matching username or email. Returns nil when the admin record or its
// user cannot be resolved.
func (r *Resolver) groupAdminUser(ctx context.Context, group *models.UserGroup) (*models.User, error) {
	admin, err := r.store.GetAdmin(ctx, group.AdminID)
	if err != nil || admin == nil {
		return nil, err
	}
	user, err := r.store.GetUserByUsername(ctx, admin.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = r.store.GetUserByEmail(ctx, admin.Email)
		if err != nil {
			return nil, err
		}
	}
	return user, nil
}

// PersonalUserIDs narrows to the actor's own records. Used by
// dashboard-style aggregates, where even the owner sees only data they
// authored themselves.
func (r *Resolver) PersonalUserIDs(actor *Actor) []string {
	return []string{actor.User.ID}
}

// CanSeeUser reports whether records authored by the given user fall inside
// the actor's scope. An empty owner ID marks a record whose author was
// deleted; those remain visible to the owner only.
func (r *Resolver) CanSeeUser(ctx context.Context, actor *Actor, ownerUserID string) (bool, error) {
	if actor.Class == Owner {
		return true, nil
	}
	if ownerUserID == "" {
		return false, nil
	}
	if ownerUserID == actor.User.ID {
		return true, nil
	}

	switch actor.Class {
	case Admin:
		if !actor.AdminRecord.Provisioned {
			return false, nil
		}
		owner, err := r.store.GetUser(ctx, ownerUserID)
		if err != nil || owner == nil {
			return false, err
		}
		if owner.AdminID == actor.AdminRecord.Admin.ID {
			return true, nil
		}
		if owner.GroupID != "" {
			group, err := r.store.GetGroup(ctx, owner.GroupID)
			if err != nil {
				return false, err
			}
			if group != nil && group.AdminID == actor.AdminRecord.Admin.ID {
				return true, nil
			}
		}
		return false, nil

	case GroupMember:
		owner, err := r.store.GetUser(ctx, ownerUserID)
		if err != nil || owner == nil {
			return false, err
		}
		if owner.GroupID == actor.Group.ID {
			return true, nil
		}
		adminUser, err := r.groupAdminUser(ctx, actor.Group)
		if err != nil {
			return false, err
		}
		return adminUser != nil && adminUser.ID == owner.ID, nil

	case Standalone:
		return false, nil
	}

	return false, errs.Fatal("unknown actor class %d", actor.Class)
}
