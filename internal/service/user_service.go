package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateUserInput carries the fields for a new user.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	SuperAdmin  bool
}

// UpdateUserInput carries optional field updates for a user.
type UpdateUserInput struct {
	Email       *string
	Password    *string
	DisplayName *string
	IsActive    *bool
}

// UserService defines the interface for user management operations
type UserService interface {
	// Create creates a new user
	Create(ctx context.Context, actor Principal, input CreateUserInput) (*domain.User, error)
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// List retrieves users with pagination and filters
	List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.User, int, error)
	// Update updates a user
	Update(ctx context.Context, actor Principal, id string, input UpdateUserInput) (*domain.User, error)
	// Delete removes a user
	Delete(ctx context.Context, actor Principal, id string) error
}

type userService struct {
	users   repository.UserRepository
	auditor *audit.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, auditor *audit.Logger) UserService {
	return &userService{users: users, auditor: auditor}
}

// Create creates a new user
func (s *userService) Create(ctx context.Context, actor Principal, input CreateUserInput) (*domain.User, error) {
	if input.Username == "" {
		return nil, apperr.Validation("username", "username is required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, apperr.Validation("email", "a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperr.Validation("password", "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		DisplayName:  input.DisplayName,
		SuperAdmin:   input.SuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// User creation is a network-level action; no tenant id on the entry.
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "user",
		ObjectID:       user.ID,
		ObjectLabel:    user.Username,
	})
	return user, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user", id)
	}
	return user, nil
}

// List retrieves users with pagination and filters
func (s *userService) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.User, int, error) {
	return s.users.List(ctx, page, limit, isActive, search)
}

// Update updates a user
func (s *userService) Update(ctx context.Context, actor Principal, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := map[string]any{
		"email":        user.Email,
		"display_name": user.DisplayName,
		"is_active":    user.IsActive,
	}

	if input.Email != nil {
		if !strings.Contains(*input.Email, "@") {
			return nil, apperr.Validation("email", "a valid email is required")
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, apperr.Validation("password", "password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	after := map[string]any{
		"email":        user.Email,
		"display_name": user.DisplayName,
		"is_active":    user.IsActive,
	}
	changesBefore, changesAfter := audit.DiffChanges(before, after)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "user",
		ObjectID:       user.ID,
		ObjectLabel:    user.Username,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return user, nil
}

// Delete removes a user
func (s *userService) Delete(ctx context.Context, actor Principal, id string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "user",
		ObjectID:       id,
		ObjectLabel:    user.Username,
	})
	return nil
}
