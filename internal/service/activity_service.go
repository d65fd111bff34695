package service

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// ActivityService defines the read interface over the append-only activity
// log. Entries are only ever written through the audit logger.
type ActivityService interface {
	// List retrieves entries newest-first with pagination and filters
	List(ctx context.Context, page, limit int, filter repository.ActivityFilter) ([]*domain.ActivityLogEntry, int, error)
	// GetByID retrieves one entry with its change diff
	GetByID(ctx context.Context, id string) (*domain.ActivityLogEntry, error)
}

type activityService struct {
	activity repository.ActivityRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(activity repository.ActivityRepository) ActivityService {
	return &activityService{activity: activity}
}

// List retrieves entries newest-first with pagination and filters
func (s *activityService) List(ctx context.Context, page, limit int, filter repository.ActivityFilter) ([]*domain.ActivityLogEntry, int, error) {
	return s.activity.List(ctx, page, limit, filter)
}

// GetByID retrieves one entry with its change diff
func (s *activityService) GetByID(ctx context.Context, id string) (*domain.ActivityLogEntry, error) {
	entry, err := s.activity.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperr.NotFound("activity entry", id)
	}
	return entry, nil
}
