package tenantstore

import (
	"context"
	"sync"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// TenantChecker validates that a tenant exists and is active. The auth
// service's tenant repository backs this in production.
type TenantChecker interface {
	// CheckTenant returns nil for an active tenant, a TenantNotFound error
	// for an unknown id and a TenantInactive error for a disabled one.
	CheckTenant(ctx context.Context, tenantID string) error
}

type handleKey struct {
	tenantID string
	kind     Kind
}

// Registry resolves tenant-scoped collection handles. Every resolution
// validates the tenant first; there is no fallback tenant. Resolved handles
// are memoized per (tenant, kind) since they carry no data.
type Registry struct {
	strategy Strategy
	tenants  TenantChecker

	mu      sync.RWMutex
	handles map[handleKey]Collection
}

// NewRegistry creates a Registry over the given strategy.
func NewRegistry(strategy Strategy, tenants TenantChecker) *Registry {
	return &Registry{
		strategy: strategy,
		tenants:  tenants,
		handles:  make(map[handleKey]Collection),
	}
}

// Collection returns the handle for one tenant's collection of the given
// kind. The tenant must exist and be active.
func (r *Registry) Collection(ctx context.Context, tenantID string, kind Kind) (Collection, error) {
	if !ValidKind(kind) {
		return nil, apperr.Validation("kind", "unknown collection kind")
	}
	if err := r.tenants.CheckTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	key := handleKey{tenantID: tenantID, kind: kind}
	r.mu.RLock()
	c, ok := r.handles[key]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.handles[key]; ok {
		return c, nil
	}
	c = r.strategy.Collection(tenantID, kind)
	r.handles[key] = c
	return c, nil
}

// Provision creates physical storage for a newly created tenant. The tenant
// row may not be visible to the checker yet, so no tenant validation runs.
func (r *Registry) Provision(ctx context.Context, tenantID string) error {
	return r.strategy.Provision(ctx, tenantID)
}

// Destroy removes all stored data for a tenant and drops its memoized
// handles.
func (r *Registry) Destroy(ctx context.Context, tenantID string) error {
	if err := r.strategy.Destroy(ctx, tenantID); err != nil {
		return err
	}
	r.mu.Lock()
	for key := range r.handles {
		if key.tenantID == tenantID {
			delete(r.handles, key)
		}
	}
	r.mu.Unlock()
	return nil
}
