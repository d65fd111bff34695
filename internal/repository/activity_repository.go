package repository

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	TenantID   *string
	ActorID    string
	Action     string
	ObjectType string
}

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	// Insert appends one entry; entries are never updated or deleted
	Insert(ctx context.Context, entry *domain.ActivityLogEntry) error
	// List retrieves entries newest-first with pagination and filters
	List(ctx context.Context, page, limit int, filter ActivityFilter) ([]*domain.ActivityLogEntry, int, error)
	// GetByID retrieves one entry
	GetByID(ctx context.Context, id string) (*domain.ActivityLogEntry, error)
}
