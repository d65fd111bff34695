package service

import (
	"context"
	"testing"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

func TestSettings(t *testing.T) {
	env := newTestEnv(t, testTenant)
	svc := NewSettingService(env.stores, env.auditor)
	ctx := context.Background()
	actor := Principal{UserID: "admin-1"}

	t.Run("set then get", func(t *testing.T) {
		if _, err := svc.Set(ctx, actor, testTenant, domain.SettingSiteTitle, "My Site", true); err != nil {
			t.Fatalf("set: %v", err)
		}
		st, err := svc.Get(ctx, testTenant, domain.SettingSiteTitle)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if st.Value != "My Site" {
			t.Errorf("expected My Site, got %v", st.Value)
		}
		if !st.Autoload {
			t.Error("expected autoload set")
		}
	})

	t.Run("set replaces in place", func(t *testing.T) {
		if _, err := svc.Set(ctx, actor, testTenant, domain.SettingSiteTitle, "Renamed", true); err != nil {
			t.Fatalf("set: %v", err)
		}
		st, err := svc.Get(ctx, testTenant, domain.SettingSiteTitle)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if st.Value != "Renamed" {
			t.Errorf("expected Renamed, got %v", st.Value)
		}
		all, err := svc.List(ctx, testTenant, false)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected one setting row, got %d", len(all))
		}
		entry := env.auditStore.last()
		if entry == nil || entry.Action != domain.ActionUpdate {
			t.Errorf("expected an update audit entry, got %+v", entry)
		}
		if entry.ChangesAfter["value"] != "Renamed" {
			t.Errorf("expected the diff to carry the new value, got %v", entry.ChangesAfter)
		}
	})

	t.Run("autoload filter", func(t *testing.T) {
		if _, err := svc.Set(ctx, actor, testTenant, "private_option", 42, false); err != nil {
			t.Fatalf("set: %v", err)
		}
		loaded, err := svc.List(ctx, testTenant, true)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, st := range loaded {
			if !st.Autoload {
				t.Errorf("expected only autoload settings, got %s", st.Key)
			}
		}
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := svc.Get(ctx, testTenant, "no_such_key")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.Delete(ctx, actor, testTenant, "private_option"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		_, err := svc.Get(ctx, testTenant, "private_option")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NOT_FOUND after delete, got %v", err)
		}
	})
}
