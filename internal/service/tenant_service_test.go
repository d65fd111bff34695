package service

import (
	"context"
	"sync"
	"testing"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// fakeTenantRepo is an in-memory TenantRepository.
type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]*domain.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[string]*domain.Tenant)}
}

func (r *fakeTenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tenants {
		if existing.Name == tenant.Name {
			return apperr.Conflict("a tenant with the same name already exists")
		}
	}
	copied := *tenant
	r.tenants[tenant.ID] = &copied
	return nil
}

func (r *fakeTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	copied := *tenant
	return &copied, nil
}

func (r *fakeTenantRepo) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tenant := range r.tenants {
		if tenant.Name == name {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTenantRepo) GetByDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tenant := range r.tenants {
		if tenant.Domain == domainName {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTenantRepo) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Tenant
	for _, tenant := range r.tenants {
		if isActive != nil && tenant.IsActive != *isActive {
			continue
		}
		copied := *tenant
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeTenantRepo) Update(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.ID]; !ok {
		return apperr.TenantNotFound(tenant.ID)
	}
	copied := *tenant
	r.tenants[tenant.ID] = &copied
	return nil
}

func (r *fakeTenantRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tenants, id)
	return nil
}

func (r *fakeTenantRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tenant := range r.tenants {
		if tenant.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// CheckTenant lets the repo double as the tenant checker for the store
// registry, the same wiring production uses.
func (r *fakeTenantRepo) CheckTenant(ctx context.Context, tenantID string) error {
	tenant, err := r.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return apperr.TenantNotFound(tenantID)
	}
	if !tenant.IsActive {
		return apperr.TenantInactive(tenantID)
	}
	return nil
}

func newTenantFixture(t *testing.T) (TenantService, *fakeTenantRepo, *tenantstore.Registry) {
	t.Helper()
	repo := newFakeTenantRepo()
	stores := tenantstore.NewRegistry(tenantstore.NewMemoryStrategy(), repo)
	auditor := audit.NewLogger(&memoryAuditStore{})
	return NewTenantService(repo, stores, auditor), repo, stores
}

func TestCreateTenant(t *testing.T) {
	svc, _, stores := newTenantFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "root", SuperAdmin: true}

	t.Run("provisions storage and seeds defaults", func(t *testing.T) {
		tenant, err := svc.Create(ctx, actor, CreateTenantInput{
			Name:        "first-site",
			DisplayName: "First Site",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !tenant.IsActive {
			t.Error("expected the new tenant active")
		}

		types := contenttype.NewRegistry(stores)
		for _, name := range []string{"post", "page"} {
			if _, err := types.PostTypeFor(ctx, tenant.ID, name); err != nil {
				t.Errorf("expected built-in post type %s seeded: %v", name, err)
			}
		}
		for _, name := range []string{"category", "tag"} {
			if _, err := types.TaxonomyFor(ctx, tenant.ID, name); err != nil {
				t.Errorf("expected built-in taxonomy %s seeded: %v", name, err)
			}
		}
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, actor, CreateTenantInput{
			Name:        "first-site",
			DisplayName: "Second First Site",
		})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, actor, CreateTenantInput{
			Name:        "Not A Slug!",
			DisplayName: "Bad",
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})
}

func TestDeleteTenantCascades(t *testing.T) {
	svc, _, stores := newTenantFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "root", SuperAdmin: true}

	tenant, err := svc.Create(ctx, actor, CreateTenantInput{
		Name:        "doomed-site",
		DisplayName: "Doomed Site",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	posts, err := stores.Collection(ctx, tenant.ID, tenantstore.KindPosts)
	if err != nil {
		t.Fatalf("posts collection: %v", err)
	}
	if _, err := posts.Insert(ctx, tenantstore.Document{"type": "post", "title": "Orphan", "slug": "orphan"}); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	if err := svc.Delete(ctx, actor, tenant.ID); err != nil {
		t.Fatalf("delete tenant: %v", err)
	}

	if _, err := svc.GetByID(ctx, tenant.ID); apperr.KindOf(err) != apperr.KindTenantNotFound {
		t.Errorf("expected TENANT_NOT_FOUND, got %v", err)
	}
	// The checker now rejects the tenant, so its content is unreachable.
	if _, err := stores.Collection(ctx, tenant.ID, tenantstore.KindPosts); apperr.KindOf(err) != apperr.KindTenantNotFound {
		t.Errorf("expected TENANT_NOT_FOUND from the store registry, got %v", err)
	}
}

func TestInactiveTenantBlocksContent(t *testing.T) {
	svc, _, stores := newTenantFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "root", SuperAdmin: true}

	tenant, err := svc.Create(ctx, actor, CreateTenantInput{
		Name:        "sleepy-site",
		DisplayName: "Sleepy Site",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	if _, err := svc.Update(ctx, actor, tenant.ID, UpdateTenantInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = stores.Collection(ctx, tenant.ID, tenantstore.KindPosts)
	if apperr.KindOf(err) != apperr.KindTenantInactive {
		t.Errorf("expected TENANT_INACTIVE, got %v", err)
	}
}
