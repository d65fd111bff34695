package tenantstore

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

type fakeTenantChecker struct {
	active   map[string]bool
	inactive map[string]bool
}

func (f *fakeTenantChecker) CheckTenant(ctx context.Context, tenantID string) error {
	if f.active[tenantID] {
		return nil
	}
	if f.inactive[tenantID] {
		return apperr.TenantInactive(tenantID)
	}
	return apperr.TenantNotFound(tenantID)
}

func newTestRegistry(tenants ...string) (*Registry, *fakeTenantChecker) {
	checker := &fakeTenantChecker{active: make(map[string]bool), inactive: make(map[string]bool)}
	for _, id := range tenants {
		checker.active[id] = true
	}
	return NewRegistry(NewMemoryStrategy(), checker), checker
}

func TestRegistryCollection(t *testing.T) {
	ctx := context.Background()
	tenantA := uuid.New().String()
	reg, checker := newTestRegistry(tenantA)

	t.Run("resolves handle for active tenant", func(t *testing.T) {
		col, err := reg.Collection(ctx, tenantA, KindPosts)
		if err != nil {
			t.Fatalf("Collection() error = %v", err)
		}
		if col == nil {
			t.Fatal("Collection() returned nil handle")
		}
	})

	t.Run("memoizes handle per tenant and kind", func(t *testing.T) {
		first, err := reg.Collection(ctx, tenantA, KindTerms)
		if err != nil {
			t.Fatalf("Collection() error = %v", err)
		}
		second, err := reg.Collection(ctx, tenantA, KindTerms)
		if err != nil {
			t.Fatalf("Collection() error = %v", err)
		}
		if first != second {
			t.Error("expected the same memoized handle for repeated resolution")
		}
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := reg.Collection(ctx, uuid.New().String(), KindPosts)
		if apperr.KindOf(err) != apperr.KindTenantNotFound {
			t.Errorf("expected TENANT_NOT_FOUND, got %v", err)
		}
	})

	t.Run("inactive tenant", func(t *testing.T) {
		inactiveID := uuid.New().String()
		checker.inactive[inactiveID] = true
		_, err := reg.Collection(ctx, inactiveID, KindPosts)
		if apperr.KindOf(err) != apperr.KindTenantInactive {
			t.Errorf("expected TENANT_INACTIVE, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := reg.Collection(ctx, tenantA, Kind("bookings"))
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	tenantA := uuid.New().String()
	tenantB := uuid.New().String()
	reg, _ := newTestRegistry(tenantA, tenantB)

	colA, err := reg.Collection(ctx, tenantA, KindPosts)
	if err != nil {
		t.Fatalf("Collection(A) error = %v", err)
	}
	colB, err := reg.Collection(ctx, tenantB, KindPosts)
	if err != nil {
		t.Fatalf("Collection(B) error = %v", err)
	}

	if _, err := colA.Insert(ctx, Document{"type": "post", "slug": "hello", "title": "Hello"}); err != nil {
		t.Fatalf("Insert(A) error = %v", err)
	}

	docsA, err := colA.Find(ctx, nil, FindOptions{})
	if err != nil {
		t.Fatalf("Find(A) error = %v", err)
	}
	if len(docsA) != 1 {
		t.Fatalf("tenant A expected 1 document, got %d", len(docsA))
	}

	docsB, err := colB.Find(ctx, nil, FindOptions{})
	if err != nil {
		t.Fatalf("Find(B) error = %v", err)
	}
	if len(docsB) != 0 {
		t.Errorf("tenant B must not see tenant A's documents, got %d", len(docsB))
	}

	// The same slug in another tenant is not a conflict.
	if _, err := colB.Insert(ctx, Document{"type": "post", "slug": "hello", "title": "Hello B"}); err != nil {
		t.Errorf("Insert(B) with tenant A's slug should succeed, got %v", err)
	}
}

func TestRegistryDestroyDropsHandlesAndData(t *testing.T) {
	ctx := context.Background()
	tenantA := uuid.New().String()
	reg, _ := newTestRegistry(tenantA)

	col, err := reg.Collection(ctx, tenantA, KindSettings)
	if err != nil {
		t.Fatalf("Collection() error = %v", err)
	}
	if _, err := col.Insert(ctx, Document{"key": "site_title", "value": "My Site"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := reg.Destroy(ctx, tenantA); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	fresh, err := reg.Collection(ctx, tenantA, KindSettings)
	if err != nil {
		t.Fatalf("Collection() after destroy error = %v", err)
	}
	docs, err := fresh.Find(ctx, nil, FindOptions{})
	if err != nil {
		t.Fatalf("Find() after destroy error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents after destroy, got %d", len(docs))
	}
}
