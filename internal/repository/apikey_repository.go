package repository

import (
	"context"
	"time"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// APIKeyRepository defines the interface for API key data access
type APIKeyRepository interface {
	// Create creates a new API key record
	Create(ctx context.Context, key *domain.APIKey) error
	// GetByID retrieves a key by ID
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	// GetByHash retrieves an active key by its secret hash
	GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	// ListByUser retrieves all keys of a user
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	// TouchLastUsed records the time a key was last used
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	// Revoke deactivates a key
	Revoke(ctx context.Context, id string) error
	// Delete removes a key row
	Delete(ctx context.Context, id string) error
}
