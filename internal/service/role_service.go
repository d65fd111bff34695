package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// RoleService defines the interface for role management operations
type RoleService interface {
	// Create creates a custom role
	Create(ctx context.Context, actor Principal, name, displayName string, permissions map[string]bool) (*domain.Role, error)
	// GetByID retrieves a role by ID
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	// List retrieves all roles
	List(ctx context.Context) ([]*domain.Role, error)
	// Update updates a role's display name and permissions
	Update(ctx context.Context, actor Principal, id string, displayName *string, permissions map[string]bool) (*domain.Role, error)
	// Delete removes a custom role
	Delete(ctx context.Context, actor Principal, id string) error
}

type roleService struct {
	roles   repository.RoleRepository
	auditor *audit.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roles repository.RoleRepository, auditor *audit.Logger) RoleService {
	return &roleService{roles: roles, auditor: auditor}
}

// Create creates a custom role
func (s *roleService) Create(ctx context.Context, actor Principal, name, displayName string, permissions map[string]bool) (*domain.Role, error) {
	if !domain.ValidSlug(name) {
		return nil, apperr.Validation("name", "name must be a url-safe slug")
	}
	if permissions == nil {
		permissions = make(map[string]bool)
	}

	now := time.Now()
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: displayName,
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if role.DisplayName == "" {
		role.DisplayName = role.Name
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "role",
		ObjectID:       role.ID,
		ObjectLabel:    role.Name,
	})
	return role, nil
}

// GetByID retrieves a role by ID
func (s *roleService) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFound("role", id)
	}
	return role, nil
}

// List retrieves all roles
func (s *roleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.List(ctx)
}

// Update updates a role's display name and permissions. Built-in role names
// never change; their permission maps may.
func (s *roleService) Update(ctx context.Context, actor Principal, id string, displayName *string, permissions map[string]bool) (*domain.Role, error) {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := map[string]any{
		"display_name": role.DisplayName,
		"permissions":  role.Permissions,
	}

	if displayName != nil {
		role.DisplayName = *displayName
	}
	if permissions != nil {
		role.Permissions = permissions
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}

	after := map[string]any{
		"display_name": role.DisplayName,
		"permissions":  role.Permissions,
	}
	changesBefore, changesAfter := audit.DiffChanges(before, after)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "role",
		ObjectID:       role.ID,
		ObjectLabel:    role.Name,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return role, nil
}

// Delete removes a custom role
func (s *roleService) Delete(ctx context.Context, actor Principal, id string) error {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsBuiltIn() {
		return apperr.ImmutableBuiltin(role.Name)
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "role",
		ObjectID:       id,
		ObjectLabel:    role.Name,
	})
	return nil
}
