package repository

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List retrieves users with pagination and filters
	List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.User, int, error)
	// Update updates a user
	Update(ctx context.Context, user *domain.User) error
	// Delete removes a user row
	Delete(ctx context.Context, id string) error
}
