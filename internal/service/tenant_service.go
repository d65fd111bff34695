package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateTenantInput carries the fields for a new site.
type CreateTenantInput struct {
	Name        string
	DisplayName string
	Domain      string
}

// UpdateTenantInput carries optional field updates for a site.
type UpdateTenantInput struct {
	DisplayName *string
	Domain      *string
	IsActive    *bool
}

// TenantService defines the interface for site lifecycle operations
type TenantService interface {
	// Create creates a tenant and provisions its content storage
	Create(ctx context.Context, actor Principal, input CreateTenantInput) (*domain.Tenant, error)
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	// List retrieves tenants with pagination and filters
	List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error)
	// Update updates a tenant
	Update(ctx context.Context, actor Principal, id string, input UpdateTenantInput) (*domain.Tenant, error)
	// Delete removes a tenant and destroys all of its content storage
	Delete(ctx context.Context, actor Principal, id string) error
}

type tenantService struct {
	tenants repository.TenantRepository
	stores  *tenantstore.Registry
	auditor *audit.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(tenants repository.TenantRepository, stores *tenantstore.Registry, auditor *audit.Logger) TenantService {
	return &tenantService{tenants: tenants, stores: stores, auditor: auditor}
}

// Create creates a tenant and provisions its content storage
func (s *tenantService) Create(ctx context.Context, actor Principal, input CreateTenantInput) (*domain.Tenant, error) {
	if !domain.ValidSlug(input.Name) {
		return nil, apperr.Validation("name", "name must be a url-safe slug")
	}
	if input.DisplayName == "" {
		return nil, apperr.Validation("display_name", "display name is required")
	}

	// UX pre-check only; the unique constraint is what makes concurrent
	// creates safe.
	exists, err := s.tenants.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("a tenant with the same name already exists")
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:          uuid.New().String(),
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Domain:      input.Domain,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}

	if err := s.stores.Provision(ctx, tenant.ID); err != nil {
		return nil, err
	}
	if err := s.seedDefaults(ctx, tenant.ID); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "tenant",
		ObjectID:       tenant.ID,
		ObjectLabel:    tenant.DisplayName,
	})
	return tenant, nil
}

// seedDefaults installs the built-in content types every site starts with.
func (s *tenantService) seedDefaults(ctx context.Context, tenantID string) error {
	ptCol, err := s.stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		return err
	}
	for _, pt := range domain.DefaultPostTypes() {
		doc, err := tenantstore.EncodeDocument(pt)
		if err != nil {
			return err
		}
		if _, err := ptCol.Insert(ctx, doc); err != nil {
			return err
		}
	}

	taxCol, err := s.stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		return err
	}
	for _, tx := range domain.DefaultTaxonomies() {
		doc, err := tenantstore.EncodeDocument(tx)
		if err != nil {
			return err
		}
		if _, err := taxCol.Insert(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (s *tenantService) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperr.TenantNotFound(id)
	}
	return tenant, nil
}

// List retrieves tenants with pagination and filters
func (s *tenantService) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error) {
	return s.tenants.List(ctx, page, limit, isActive, search)
}

// Update updates a tenant
func (s *tenantService) Update(ctx context.Context, actor Principal, id string, input UpdateTenantInput) (*domain.Tenant, error) {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := map[string]any{
		"display_name": tenant.DisplayName,
		"domain":       tenant.Domain,
		"is_active":    tenant.IsActive,
	}

	if input.DisplayName != nil {
		tenant.DisplayName = *input.DisplayName
	}
	if input.Domain != nil {
		tenant.Domain = *input.Domain
	}
	if input.IsActive != nil {
		tenant.IsActive = *input.IsActive
	}

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}

	after := map[string]any{
		"display_name": tenant.DisplayName,
		"domain":       tenant.Domain,
		"is_active":    tenant.IsActive,
	}
	changesBefore, changesAfter := audit.DiffChanges(before, after)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "tenant",
		ObjectID:       tenant.ID,
		ObjectLabel:    tenant.DisplayName,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return tenant, nil
}

// Delete removes a tenant and destroys all of its content storage
func (s *tenantService) Delete(ctx context.Context, actor Principal, id string) error {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.stores.Destroy(ctx, id); err != nil {
		return err
	}
	if err := s.tenants.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "tenant",
		ObjectID:       id,
		ObjectLabel:    tenant.DisplayName,
	})
	return nil
}
