package repository

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// MembershipRepository defines the interface for site membership data access
type MembershipRepository interface {
	// Create creates a membership linking a user to a tenant with a role
	Create(ctx context.Context, m *domain.SiteMembership) error
	// Get retrieves the membership for a user on a tenant
	Get(ctx context.Context, tenantID, userID string) (*domain.SiteMembership, error)
	// ListByUser retrieves all memberships of a user
	ListByUser(ctx context.Context, userID string) ([]*domain.SiteMembership, error)
	// ListByTenant retrieves all memberships on a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.SiteMembership, error)
	// UpdateRole changes the role of an existing membership
	UpdateRole(ctx context.Context, tenantID, userID, roleID string) error
	// Delete removes a membership
	Delete(ctx context.Context, tenantID, userID string) error
	// CountByUser returns the number of memberships a user holds
	CountByUser(ctx context.Context, userID string) (int, error)
}
