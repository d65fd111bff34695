package repository

import (
	"context"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// TenantStatusChecker adapts the tenant repository to the tenant store's
// validation hook. There is no fallback tenant; an unknown or inactive id is
// always an error.
type TenantStatusChecker struct {
	tenants TenantRepository
}

// NewTenantStatusChecker creates a TenantStatusChecker.
func NewTenantStatusChecker(tenants TenantRepository) *TenantStatusChecker {
	return &TenantStatusChecker{tenants: tenants}
}

// CheckTenant returns nil for an active tenant.
func (c *TenantStatusChecker) CheckTenant(ctx context.Context, tenantID string) error {
	tenant, err := c.tenants.GetByID(ctx, tenantID)
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
