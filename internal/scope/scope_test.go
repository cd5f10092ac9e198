package scope

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/storage"
	"github.com/mkrish/fintrack/internal/storage/sqlite"
)

// tenantFixture builds the canonical actor graph: an owner, a provisioned
// admin with one direct user and one group of two members, an admin without
// a backing record yet, and a standalone user.
type tenantFixture struct {
	store    storage.Store
	resolver *Resolver

	owner      *models.User
	adminUser  *models.User
	admin      *models.Admin
	group      *models.UserGroup
	member1    *models.User
	member2    *models.User
	direct     *models.User
	bareAdmin  *models.User
	standalone *models.User
}

func newTenantFixture(t *testing.T) *tenantFixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	f := &tenantFixture{store: store, resolver: NewResolver(store)}

	newUser := func(username string, role models.Role) *models.User {
		user := &models.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "x",
			Role:         role,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", username, err)
		}
		return user
	}

	f.owner = newUser("root", models.RoleOwner)
	f.adminUser = newUser("chief", models.RoleAdmin)
	f.bareAdmin = newUser("novice", models.RoleAdmin)
	f.standalone = newUser("loner", models.RoleUser)

	f.admin = &models.Admin{Username: "chief", Email: "chief@example.com", OwnerUserID: f.owner.ID, IsActive: true}
	if err := store.CreateAdmin(ctx, f.admin); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}

	f.group = &models.UserGroup{Name: "household", AdminID: f.admin.ID}
	if err := store.CreateGroup(ctx, f.group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	f.member1 = newUser("m1", models.RoleUser)
	f.member1.GroupID = f.group.ID
	f.member2 = newUser("m2", models.RoleUser)
	f.member2.GroupID = f.group.ID
	f.direct = newUser("d1", models.RoleUser)
	f.direct.AdminID = f.admin.ID
	for _, u := range []*models.User{f.member1, f.member2, f.direct} {
		if err := store.UpdateUser(ctx, u); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
	}

	return f
}

func (f *tenantFixture) actor(t *testing.T, user *models.User) *Actor {
	t.Helper()
	actor, err := f.resolver.ResolveActor(context.Background(), user)
	if err != nil {
		t.Fatalf("ResolveActor(%s) failed: %v", user.Username, err)
	}
	return actor
}

func TestResolveActor(t *testing.T) {
	f := newTenantFixture(t)

	t.Run("owner resolves with its admin lookup", func(t *testing.T) {
		actor := f.actor(t, f.owner)
		if actor.Class != Owner {
			t.Errorf("Expected Owner class, got %s", actor.Class)
		}
		if actor.AdminRecord.Provisioned {
			t.Error("Expected owner without admin record")
		}
	})

	t.Run("admin with backing record is provisioned", func(t *testing.T) {
		actor := f.actor(t, f.adminUser)
		if actor.Class != Admin {
			t.Errorf("Expected Admin class, got %s", actor.Class)
		}
		if !actor.AdminRecord.Provisioned {
			t.Fatal("Expected provisioned admin record")
		}
		if actor.AdminRecord.Admin.ID != f.admin.ID {
			t.Error("Expected the matching admin record")
		}
	})

	t.Run("admin without backing record stays valid", func(t *testing.T) {
		actor := f.actor(t, f.bareAdmin)
		if actor.Class != Admin {
			t.Errorf("Expected Admin class, got %s", actor.Class)
		}
		if actor.AdminRecord.Provisioned {
			t.Error("Expected unprovisioned admin lookup")
		}
	})

	t.Run("grouped user resolves as group member", func(t *testing.T) {
		actor := f.actor(t, f.member1)
		if actor.Class != GroupMember {
			t.Errorf("Expected GroupMember class, got %s", actor.Class)
		}
		if actor.Group == nil || actor.Group.ID != f.group.ID {
			t.Error("Expected the member's group on the actor")
		}
	})

	t.Run("ungrouped user resolves as standalone", func(t *testing.T) {
		actor := f.actor(t, f.standalone)
		if actor.Class != Standalone {
			t.Errorf("Expected Standalone class, got %s", actor.Class)
		}
	})

	t.Run("dangling group reference degrades to standalone", func(t *testing.T) {
		orphan := &models.User{Username: "orphan", Email: "orphan@example.com", PasswordHash: "x", Role: models.RoleUser, GroupID: "gone"}
		// Skip the FK by resolving without persisting the group reference.
		actor, err := f.resolver.ResolveActor(context.Background(), orphan)
		if err != nil {
			t.Fatalf("ResolveActor failed: %v", err)
		}
		if actor.Class != Standalone {
			t.Errorf("Expected degrade to standalone, got %s", actor.Class)
		}
	})
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestVisibleUserIDs(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	t.Run("owner has global scope", func(t *testing.T) {
		ids, err := f.resolver.VisibleUserIDs(ctx, f.actor(t, f.owner))
		if err != nil {
			t.Fatalf("VisibleUserIDs failed: %v", err)
		}
		if ids != nil {
			t.Errorf("Expected nil (global) scope, got %v", ids)
		}
	})

	t.Run("admin sees self, direct users and group members", func(t *testing.T) {
		ids, err := f.resolver.VisibleUserIDs(ctx, f.actor(t, f.adminUser))
		if err != nil {
			t.Fatalf("VisibleUserIDs failed: %v", err)
		}
		set := idSet(ids)
		for _, want := range []*models.User{f.adminUser, f.direct, f.member1, f.member2} {
			if !set[want.ID] {
				t.Errorf("Expected %s in admin scope", want.Username)
			}
		}
		if len(ids) != 4 {
			t.Errorf("Expected 4 users in scope, got %d", len(ids))
		}
		if ids[0] != f.adminUser.ID {
			t.Error("Expected the admin's own ID first")
		}
	})

	t.Run("unprovisioned admin degrades to personal scope", func(t *testing.T) {
		ids, err := f.resolver.VisibleUserIDs(ctx, f.actor(t, f.bareAdmin))
		if err != nil {
			t.Fatalf("VisibleUserIDs failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != f.bareAdmin.ID {
			t.Errorf("Expected personal-only scope, got %v", ids)
		}
	})

	t.Run("group member sees peers and the group admin", func(t *testing.T) {
		ids, err := f.resolver.VisibleUserIDs(ctx, f.actor(t, f.member1))
		if err != nil {
			t.Fatalf("VisibleUserIDs failed: %v", err)
		}
		set := idSet(ids)
		for _, want := range []*models.User{f.member1, f.member2, f.adminUser} {
			if !set[want.ID] {
				t.Errorf("Expected %s in group scope", want.Username)
			}
		}
		if set[f.direct.ID] {
			t.Error("Group scope must not include the admin's direct users")
		}
		if set[f.standalone.ID] {
			t.Error("Group scope must not include outsiders")
		}
	})

	t.Run("standalone sees only itself", func(t *testing.T) {
		ids, err := f.resolver.VisibleUserIDs(ctx, f.actor(t, f.standalone))
		if err != nil {
			t.Fatalf("VisibleUserIDs failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != f.standalone.ID {
			t.Errorf("Expected personal-only scope, got %v", ids)
		}
	})
}

func TestCanSeeUser(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	check := func(t *testing.T, actor *Actor, ownerID string, want bool) {
		t.Helper()
		got, err := f.resolver.CanSeeUser(ctx, actor, ownerID)
		if err != nil {
			t.Fatalf("CanSeeUser failed: %v", err)
		}
		if got != want {
			t.Errorf("CanSeeUser(%s, %s) = %v, want %v", actor.Class, ownerID, got, want)
		}
	}

	t.Run("owner sees everything including orphaned records", func(t *testing.T) {
		owner := f.actor(t, f.owner)
		check(t, owner, f.member1.ID, true)
		check(t, owner, "", true)
	})

	t.Run("orphaned records hidden from everyone else", func(t *testing.T) {
		check(t, f.actor(t, f.adminUser), "", false)
		check(t, f.actor(t, f.member1), "", false)
		check(t, f.actor(t, f.standalone), "", false)
	})

	t.Run("admin sees direct and group-managed users", func(t *testing.T) {
		admin := f.actor(t, f.adminUser)
		check(t, admin, f.direct.ID, true)
		check(t, admin, f.member2.ID, true)
		check(t, admin, f.standalone.ID, false)
	})

	t.Run("group member sees peers and the group admin, not outsiders", func(t *testing.T) {
		member := f.actor(t, f.member1)
		check(t, member, f.member2.ID, true)
		check(t, member, f.adminUser.ID, true)
		check(t, member, f.direct.ID, false)
		check(t, member, f.standalone.ID, false)
	})

	t.Run("standalone sees only itself", func(t *testing.T) {
		alone := f.actor(t, f.standalone)
		check(t, alone, f.standalone.ID, true)
		check(t, alone, f.member1.ID, false)
	})
}
