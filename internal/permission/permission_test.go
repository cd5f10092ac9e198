package permission

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
	"github.com/mkrish/fintrack/internal/storage/sqlite"
)

type fixture struct {
	store     storage.Store
	resolver  *scope.Resolver
	evaluator *Evaluator

	owner      *models.User
	adminUser  *models.User
	admin      *models.Admin
	group      *models.UserGroup
	member     *models.User
	peer       *models.User
	standalone *models.User
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
	f.evaluator = NewEvaluator(store, f.resolver)

	newUser := func(username string, role models.Role) *models.User {
		user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", username, err)
		}
		return user
	}

	f.owner = newUser("root", models.RoleOwner)
	f.adminUser = newUser("chief", models.RoleAdmin)
	f.standalone = newUser("loner", models.RoleUser)

	f.admin = &models.Admin{Username: "chief", Email: "chief@example.com", OwnerUserID: f.owner.ID, IsActive: true}
	if err := store.CreateAdmin(ctx, f.admin); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	f.group = &models.UserGroup{Name: "household", AdminID: f.admin.ID}
	if err := store.CreateGroup(ctx, f.group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	f.member = newUser("m1", models.RoleUser)
	f.member.GroupID = f.group.ID
	f.peer = newUser("m2", models.RoleUser)
	f.peer.GroupID = f.group.ID
	for _, u := range []*models.User{f.member, f.peer} {
		if err := store.UpdateUser(ctx, u); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
	}
	return f
}

func (f *fixture) actor(t *testing.T, user *models.User) *scope.Actor {
	t.Helper()
	actor, err := f.resolver.ResolveActor(context.Background(), user)
	if err != nil {
		t.Fatalf("ResolveActor(%s) failed: %v", user.Username, err)
	}
	return actor
}

func TestCanMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner mutates anything", func(t *testing.T) {
		owner := f.actor(t, f.owner)
		if err := f.evaluator.CanMutate(ctx, owner, f.member.ID); err != nil {
			t.Errorf("Expected owner to mutate member records: %v", err)
		}
		if err := f.evaluator.CanMutate(ctx, owner, ""); err != nil {
			t.Errorf("Expected owner to mutate orphaned records: %v", err)
		}
	})

	t.Run("direct owner mutates own records", func(t *testing.T) {
		member := f.actor(t, f.member)
		if err := f.evaluator.CanMutate(ctx, member, f.member.ID); err != nil {
			t.Errorf("Expected self-mutation to pass: %v", err)
		}
	})

	t.Run("group visibility does not grant mutation", func(t *testing.T) {
		member := f.actor(t, f.member)

		visible, err := f.evaluator.CanView(ctx, member, f.peer.ID)
		if err != nil {
			t.Fatalf("CanView failed: %v", err)
		}
		if !visible {
			t.Fatal("Expected peer records visible through group scope")
		}

		err = f.evaluator.CanMutate(ctx, member, f.peer.ID)
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied for peer mutation, got %v", err)
		}
	})

	t.Run("admin mutates records of group-managed users", func(t *testing.T) {
		admin := f.actor(t, f.adminUser)
		if err := f.evaluator.CanMutate(ctx, admin, f.member.ID); err != nil {
			t.Errorf("Expected group admin to mutate member records: %v", err)
		}
	})

	t.Run("admin cannot mutate records outside its groups", func(t *testing.T) {
		admin := f.actor(t, f.adminUser)
		err := f.evaluator.CanMutate(ctx, admin, f.standalone.ID)
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied, got %v", err)
		}
	})
}

func TestCanCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner, admin and standalone may create", func(t *testing.T) {
		for _, user := range []*models.User{f.owner, f.adminUser, f.standalone} {
			if err := f.evaluator.CanCreate(ctx, f.actor(t, user)); err != nil {
				t.Errorf("Expected %s to create records: %v", user.Username, err)
			}
		}
	})

	t.Run("plain group member is denied", func(t *testing.T) {
		err := f.evaluator.CanCreate(ctx, f.actor(t, f.member))
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied, got %v", err)
		}
	})

	t.Run("group member matching the group's admin record may create", func(t *testing.T) {
		// A USER-role account whose credentials match the Admin record that
		// owns its group acts as the group admin.
		lead := &models.User{Username: "lead", Email: "lead@example.com", PasswordHash: "x", Role: models.RoleUser}
		if err := f.store.CreateUser(ctx, lead); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		leadAdmin := &models.Admin{Username: "lead", Email: "lead@example.com", OwnerUserID: f.owner.ID, IsActive: true}
		if err := f.store.CreateAdmin(ctx, leadAdmin); err != nil {
			t.Fatalf("CreateAdmin failed: %v", err)
		}
		team := &models.UserGroup{Name: "team", AdminID: leadAdmin.ID}
		if err := f.store.CreateGroup(ctx, team); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		lead.GroupID = team.ID
		if err := f.store.UpdateUser(ctx, lead); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		if err := f.evaluator.CanCreate(ctx, f.actor(t, lead)); err != nil {
			t.Errorf("Expected group admin member to create records: %v", err)
		}
	})
}

func TestCheckRoleChange(t *testing.T) {
	f := newFixture(t)

	owner := f.actor(t, f.owner)
	admin := f.actor(t, f.adminUser)

	t.Run("only the owner changes roles", func(t *testing.T) {
		err := f.evaluator.CheckRoleChange(admin, f.member, models.RoleAdmin)
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied, got %v", err)
		}
	})

	t.Run("the owner role is immutable", func(t *testing.T) {
		err := f.evaluator.CheckRoleChange(owner, f.owner, models.RoleUser)
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied, got %v", err)
		}
	})

	t.Run("unknown role is a validation error", func(t *testing.T) {
		err := f.evaluator.CheckRoleChange(owner, f.member, models.Role("SUPERUSER"))
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("setting the current role again is an error, not a no-op", func(t *testing.T) {
		err := f.evaluator.CheckRoleChange(owner, f.member, models.RoleUser)
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("valid promotion passes", func(t *testing.T) {
		if err := f.evaluator.CheckRoleChange(owner, f.member, models.RoleAdmin); err != nil {
			t.Errorf("Expected promotion to pass: %v", err)
		}
	})
}

func TestCheckBlock(t *testing.T) {
	f := newFixture(t)

	t.Run("elevated roles cannot be blocked", func(t *testing.T) {
		err := f.evaluator.CheckBlock(f.adminUser, true)
		if !errors.Is(err, errs.ErrAccessDenied) {
			t.Errorf("Expected access denied, got %v", err)
		}
	})

	t.Run("redundant block and unblock are validation errors", func(t *testing.T) {
		if err := f.evaluator.CheckBlock(f.member, false); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error unblocking unblocked user, got %v", err)
		}
		f.member.Blocked = true
		if err := f.evaluator.CheckBlock(f.member, true); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Expected validation error blocking blocked user, got %v", err)
		}
		f.member.Blocked = false
	})

	t.Run("valid block passes", func(t *testing.T) {
		if err := f.evaluator.CheckBlock(f.member, true); err != nil {
			t.Errorf("Expected block to pass: %v", err)
		}
	})
}
