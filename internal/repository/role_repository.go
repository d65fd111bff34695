package repository

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	// Create creates a new role
	Create(ctx context.Context, role *domain.Role) error
	// GetByID retrieves a role by ID
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	// GetByName retrieves a role by name
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	// List retrieves all roles
	List(ctx context.Context) ([]*domain.Role, error)
	// Update updates a role
	Update(ctx context.Context, role *domain.Role) error
	// Delete removes a role; implementations must refuse while memberships
	// reference it, counting inside the deleting transaction
	Delete(ctx context.Context, id string) error
}
