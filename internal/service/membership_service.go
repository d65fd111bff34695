package service

import (
	"context"
	"time"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// MembershipService defines the interface for site membership operations
type MembershipService interface {
	// Add links a user to a tenant with a role
	Add(ctx context.Context, actor Principal, tenantID, userID, roleID string) (*domain.SiteMembership, error)
	// ListByTenant retrieves all memberships on a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.SiteMembership, error)
	// ListByUser retrieves all memberships of a user
	ListByUser(ctx context.Context, userID string) ([]*domain.SiteMembership, error)
	// ChangeRole updates the role of an existing membership
	ChangeRole(ctx context.Context, actor Principal, tenantID, userID, roleID string) error
	// Remove deletes a membership
	Remove(ctx context.Context, actor Principal, tenantID, userID string) error
}

type membershipService struct {
	memberships repository.MembershipRepository
	users       repository.UserRepository
	roles       repository.RoleRepository
	auditor     *audit.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	memberships repository.MembershipRepository,
	users repository.UserRepository,
	roles repository.RoleRepository,
	auditor *audit.Logger,
) MembershipService {
	return &membershipService{memberships: memberships, users: users, roles: roles, auditor: auditor}
}

// Add links a user to a tenant with a role
func (s *membershipService) Add(ctx context.Context, actor Principal, tenantID, userID, roleID string) (*domain.SiteMembership, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user", userID)
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFound("role", roleID)
	}

	m := &domain.SiteMembership{
		TenantID:  tenantID,
		UserID:    userID,
		RoleID:    roleID,
		CreatedAt: time.Now(),
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "membership",
		ObjectID:       userID,
		ObjectLabel:    user.Username,
	})
	return m, nil
}

// ListByTenant retrieves all memberships on a tenant
func (s *membershipService) ListByTenant(ctx context.Context, tenantID string) ([]*domain.SiteMembership, error) {
	return s.memberships.ListByTenant(ctx, tenantID)
}

// ListByUser retrieves all memberships of a user
func (s *membershipService) ListByUser(ctx context.Context, userID string) ([]*domain.SiteMembership, error) {
	return s.memberships.ListByUser(ctx, userID)
}

// ChangeRole updates the role of an existing membership
func (s *membershipService) ChangeRole(ctx context.Context, actor Principal, tenantID, userID, roleID string) error {
	existing, err := s.memberships.Get(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("membership", tenantID+"/"+userID)
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role", roleID)
	}
	if err := s.memberships.UpdateRole(ctx, tenantID, userID, roleID); err != nil {
		return err
	}

	changesBefore, changesAfter := audit.DiffChanges(
		map[string]any{"role_id": existing.RoleID},
		map[string]any{"role_id": roleID},
	)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "membership",
		ObjectID:       userID,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return nil
}

// Remove deletes a membership
func (s *membershipService) Remove(ctx context.Context, actor Principal, tenantID, userID string) error {
	if err := s.memberships.Delete(ctx, tenantID, userID); err != nil {
		return err
	}
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "membership",
		ObjectID:       userID,
	})
	return nil
}
