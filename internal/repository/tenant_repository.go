package repository

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *domain.Tenant) error
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	// GetByName retrieves a tenant by its url-safe name
	GetByName(ctx context.Context, name string) (*domain.Tenant, error)
	// GetByDomain retrieves a tenant by its mapped domain
	GetByDomain(ctx context.Context, domainName string) (*domain.Tenant, error)
	// List retrieves tenants with pagination and filters
	List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error)
	// Update updates a tenant
	Update(ctx context.Context, tenant *domain.Tenant) error
	// Delete removes a tenant row
	Delete(ctx context.Context, id string) error
	// ExistsByName checks if a tenant exists with the given name
	ExistsByName(ctx context.Context, name string) (bool, error)
}
