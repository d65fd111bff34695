package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/pkg/apperr"
	"github.com/grandslambert/backend-cms/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "cms-test",
	}
}

type authFixture struct {
	svc         AuthService
	users       *fakeUserRepo
	roles       *fakeRoleRepo
	memberships *fakeMembershipRepo
	revoker     *fakeRevoker
	auditStore  *memoryAuditStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	memberships := newFakeMembershipRepo()
	revoker := newFakeRevoker()
	auditStore := &memoryAuditStore{}
	svc := NewAuthService(users, roles, memberships, revoker, audit.NewLogger(auditStore), testJWTConfig())
	return &authFixture{
		svc:         svc,
		users:       users,
		roles:       roles,
		memberships: memberships,
		revoker:     revoker,
		auditStore:  auditStore,
	}
}

func (f *authFixture) addUser(t *testing.T, username, password string, superAdmin, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		SuperAdmin:   superAdmin,
		IsActive:     active,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *authFixture) addRole(t *testing.T, name string, permissions map[string]bool) *domain.Role {
	t.Helper()
	role := &domain.Role{Name: name, DisplayName: name, Permissions: permissions}
	if err := f.roles.Create(context.Background(), role); err != nil {
		t.Fatalf("create role: %v", err)
	}
	return role
}

func (f *authFixture) addMembership(t *testing.T, tenantID, userID, roleID string) {
	t.Helper()
	err := f.memberships.Create(context.Background(), &domain.SiteMembership{
		TenantID: tenantID,
		UserID:   userID,
		RoleID:   roleID,
	})
	if err != nil {
		t.Fatalf("create membership: %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "correct-horse", false, true)
	f.addUser(t, "mallory", "anything", false, false)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		user, pair, err := f.svc.Login(ctx, "alice", "correct-horse")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("expected alice, got %s", user.Username)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected both tokens issued")
		}
		entry := f.auditStore.last()
		if entry == nil || entry.Action != domain.ActionLogin {
			t.Errorf("expected login audit entry, got %+v", entry)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "alice", "wrong")
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "nobody", "whatever")
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "mallory", "anything")
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "pw123456", false, true)
	ctx := context.Background()

	_, pair, err := f.svc.Login(ctx, "alice", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	t.Run("refresh token accepted", func(t *testing.T) {
		next, err := f.svc.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if next.AccessToken == "" {
			t.Error("expected a new access token")
		}
	})

	t.Run("access token rejected", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, pair.AccessToken)
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, "not-a-token")
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	})
}

func TestResolvePermissions(t *testing.T) {
	f := newAuthFixture(t)
	editor := f.addRole(t, domain.RoleEditor, map[string]bool{"edit_posts": true})
	user := f.addUser(t, "alice", "pw123456", false, true)
	f.addMembership(t, "tenant-1", user.ID, editor.ID)
	ctx := context.Background()

	t.Run("super admin gets everything", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{UserID: "any", SuperAdmin: true})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !set.Has("anything_at_all") {
			t.Error("super admin should hold every permission")
		}
	})

	t.Run("member resolves role permissions", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{UserID: user.ID, TenantID: "tenant-1"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !set.Has("edit_posts") {
			t.Error("expected edit_posts granted")
		}
		if set.Has("manage_options") {
			t.Error("expected manage_options denied")
		}
	})

	t.Run("no membership means no permissions, not an error", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{UserID: user.ID, TenantID: "tenant-2"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if set.Has("edit_posts") {
			t.Error("expected nothing granted without membership")
		}
	})

	t.Run("no tenant means no permissions", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{UserID: user.ID})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if set.Has("edit_posts") {
			t.Error("expected nothing granted without a tenant")
		}
	})

	t.Run("key permission map caps the role", func(t *testing.T) {
		writer := f.addRole(t, "writer", map[string]bool{"edit_posts": true, "manage_menus": true})
		bob := f.addUser(t, "bob", "pw123456", false, true)
		f.addMembership(t, "tenant-1", bob.ID, writer.ID)

		set, err := f.svc.Resolve(ctx, Principal{
			UserID:         bob.ID,
			TenantID:       "tenant-1",
			KeyPermissions: map[string]bool{"edit_posts": true},
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !set.Has("edit_posts") {
			t.Error("expected edit_posts granted through the key")
		}
		if set.Has("manage_menus") {
			t.Error("the role grants manage_menus but the key must not")
		}
	})

	t.Run("key cannot grant past the role", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{
			UserID:         user.ID,
			TenantID:       "tenant-1",
			KeyPermissions: map[string]bool{"manage_options": true},
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if set.Has("manage_options") {
			t.Error("the key names manage_options but the role never granted it")
		}
	})

	t.Run("key permission map caps a super admin too", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{
			UserID:         "root",
			SuperAdmin:     true,
			KeyPermissions: map[string]bool{"view_activity": true},
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !set.Has("view_activity") {
			t.Error("expected view_activity granted")
		}
		if set.Has("manage_options") {
			t.Error("a scoped key must cap even a super admin session")
		}
	})

	t.Run("site-bound key holds nothing on other sites", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{
			UserID:      user.ID,
			TenantID:    "tenant-1",
			KeyTenantID: "tenant-2",
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if set.Has("edit_posts") {
			t.Error("expected nothing granted outside the bound site")
		}
	})

	t.Run("site-bound key resolves normally on its site", func(t *testing.T) {
		set, err := f.svc.Resolve(ctx, Principal{
			UserID:      user.ID,
			TenantID:    "tenant-1",
			KeyTenantID: "tenant-1",
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !set.Has("edit_posts") {
			t.Error("expected the role's permissions on the bound site")
		}
	})
}

func TestImpersonate(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.addRole(t, domain.RoleAdmin, map[string]bool{"switch_user": true})
	editor := f.addRole(t, domain.RoleEditor, map[string]bool{"edit_posts": true})

	boss := f.addUser(t, "boss", "pw123456", false, true)
	worker := f.addUser(t, "worker", "pw123456", false, true)
	super := f.addUser(t, "root", "pw123456", true, true)
	loner := f.addUser(t, "loner", "pw123456", false, true)

	f.addMembership(t, "tenant-1", boss.ID, admin.ID)
	f.addMembership(t, "tenant-1", worker.ID, editor.ID)
	ctx := context.Background()

	t.Run("tenant admin may impersonate a member", func(t *testing.T) {
		target, pair, err := f.svc.Impersonate(ctx, Principal{UserID: boss.ID, TenantID: "tenant-1"}, worker.ID)
		if err != nil {
			t.Fatalf("impersonate: %v", err)
		}
		if target.ID != worker.ID {
			t.Errorf("expected target %s, got %s", worker.ID, target.ID)
		}
		if pair.AccessToken == "" {
			t.Error("expected tokens for the target session")
		}
		entry := f.auditStore.last()
		if entry == nil || entry.Action != domain.ActionImpersonateStart {
			t.Fatalf("expected impersonate_start entry, got %+v", entry)
		}
		if entry.ActorID != boss.ID {
			t.Errorf("audit actor should be the original admin, got %s", entry.ActorID)
		}
	})

	t.Run("non-admin member denied", func(t *testing.T) {
		_, _, err := f.svc.Impersonate(ctx, Principal{UserID: worker.ID, TenantID: "tenant-1"}, boss.ID)
		if apperr.KindOf(err) != apperr.KindForbidden {
			t.Errorf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("super admin target blocked for tenant admin", func(t *testing.T) {
		_, _, err := f.svc.Impersonate(ctx, Principal{UserID: boss.ID, TenantID: "tenant-1"}, super.ID)
		if apperr.KindOf(err) != apperr.KindForbidden {
			t.Errorf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("target without memberships rejected", func(t *testing.T) {
		_, _, err := f.svc.Impersonate(ctx, Principal{UserID: super.ID, SuperAdmin: true}, loner.ID)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("nested impersonation keeps the original actor", func(t *testing.T) {
		// root impersonating worker while already impersonating boss: the
		// trail must still point at root.
		_, _, err := f.svc.Impersonate(ctx, Principal{
			UserID:         boss.ID,
			SuperAdmin:     true,
			ImpersonatorID: super.ID,
		}, worker.ID)
		if err != nil {
			t.Fatalf("impersonate: %v", err)
		}
		entry := f.auditStore.last()
		if entry.ActorID != super.ID {
			t.Errorf("expected original actor %s on the trail, got %s", super.ID, entry.ActorID)
		}
	})
}

func TestSwitchBack(t *testing.T) {
	f := newAuthFixture(t)
	boss := f.addUser(t, "boss", "pw123456", false, true)
	ctx := context.Background()

	t.Run("restores the original actor", func(t *testing.T) {
		original, pair, err := f.svc.SwitchBack(ctx, Principal{
			UserID:         "someone-else",
			ImpersonatorID: boss.ID,
		})
		if err != nil {
			t.Fatalf("switch back: %v", err)
		}
		if original.ID != boss.ID {
			t.Errorf("expected %s restored, got %s", boss.ID, original.ID)
		}
		if pair.AccessToken == "" {
			t.Error("expected tokens for the restored session")
		}
		entry := f.auditStore.last()
		if entry == nil || entry.Action != domain.ActionImpersonateStop {
			t.Errorf("expected impersonate_stop entry, got %+v", entry)
		}
	})

	t.Run("not impersonating", func(t *testing.T) {
		_, _, err := f.svc.SwitchBack(ctx, Principal{UserID: boss.ID})
		if apperr.KindOf(err) != apperr.KindNotImpersonating {
			t.Errorf("expected NOT_IMPERSONATING, got %v", err)
		}
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	err := f.svc.Logout(ctx, Principal{UserID: "user-1", TokenID: "jti-1"}, expiry)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := f.revoker.revoked["jti-1"]; !ok {
		t.Error("expected the token id revoked")
	}
	entry := f.auditStore.last()
	if entry == nil || entry.Action != domain.ActionLogout {
		t.Errorf("expected logout audit entry, got %+v", entry)
	}
}

func TestAuditActorID(t *testing.T) {
	plain := Principal{UserID: "u1"}
	if plain.AuditActorID() != "u1" {
		t.Errorf("expected u1, got %s", plain.AuditActorID())
	}
	impersonated := Principal{UserID: "u2", ImpersonatorID: "u1"}
	if impersonated.AuditActorID() != "u1" {
		t.Errorf("expected original actor u1, got %s", impersonated.AuditActorID())
	}
	if !impersonated.Impersonating() {
		t.Error("expected Impersonating true")
	}
}
