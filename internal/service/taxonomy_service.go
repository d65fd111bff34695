package service

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateTaxonomyInput carries the fields for a custom taxonomy.
type CreateTaxonomyInput struct {
	Name         string
	Labels       domain.Labels
	Hierarchical bool
	PostTypes    []string
}

// UpdateTaxonomyInput carries optional field updates for a taxonomy.
type UpdateTaxonomyInput struct {
	Name      *string
	Labels    *domain.Labels
	PostTypes []string
}

// TaxonomyService defines the interface for taxonomy management
type TaxonomyService interface {
	// List retrieves all taxonomies of a tenant
	List(ctx context.Context, tenantID string) ([]*domain.Taxonomy, error)
	// GetByName retrieves a taxonomy by name
	GetByName(ctx context.Context, tenantID, name string) (*domain.Taxonomy, error)
	// Create creates a custom taxonomy
	Create(ctx context.Context, actor Principal, tenantID string, input CreateTaxonomyInput) (*domain.Taxonomy, error)
	// Update updates a taxonomy; built-in names never change
	Update(ctx context.Context, actor Principal, tenantID, name string, input UpdateTaxonomyInput) (*domain.Taxonomy, error)
	// Delete removes a custom taxonomy unless terms still use it
	Delete(ctx context.Context, actor Principal, tenantID, name string) error
}

type taxonomyService struct {
	stores  *tenantstore.Registry
	types   *contenttype.Registry
	auditor *audit.Logger
}

// NewTaxonomyService creates a new TaxonomyService
func NewTaxonomyService(stores *tenantstore.Registry, types *contenttype.Registry, auditor *audit.Logger) TaxonomyService {
	return &taxonomyService{stores: stores, types: types, auditor: auditor}
}

// List retrieves all taxonomies of a tenant
func (s *taxonomyService) List(ctx context.Context, tenantID string) ([]*domain.Taxonomy, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, nil, tenantstore.FindOptions{
		Sort: []tenantstore.SortField{{Field: "name"}},
	})
	if err != nil {
		return nil, err
	}
	taxonomies := make([]*domain.Taxonomy, 0, len(docs))
	for _, doc := range docs {
		var tx domain.Taxonomy
		if err := tenantstore.DecodeDocument(doc, &tx); err != nil {
			return nil, err
		}
		taxonomies = append(taxonomies, &tx)
	}
	return taxonomies, nil
}

// GetByName retrieves a taxonomy by name
func (s *taxonomyService) GetByName(ctx context.Context, tenantID, name string) (*domain.Taxonomy, error) {
	return s.types.TaxonomyFor(ctx, tenantID, name)
}

// Create creates a custom taxonomy
func (s *taxonomyService) Create(ctx context.Context, actor Principal, tenantID string, input CreateTaxonomyInput) (*domain.Taxonomy, error) {
	if !domain.ValidSlug(input.Name) {
		return nil, apperr.Validation("name", "name must be a url-safe slug")
	}
	if input.Labels.Singular == "" {
		return nil, apperr.Validation("labels.singular", "singular label is required")
	}

	tx := domain.Taxonomy{
		Name:         input.Name,
		Labels:       input.Labels,
		Hierarchical: input.Hierarchical,
		PostTypes:    input.PostTypes,
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(tx)
	if err != nil {
		return nil, err
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "taxonomy",
		ObjectID:       id,
		ObjectLabel:    tx.Name,
	})
	return &tx, nil
}

// Update updates a taxonomy; built-in names never change
func (s *taxonomyService) Update(ctx context.Context, actor Principal, tenantID, name string, input UpdateTaxonomyInput) (*domain.Taxonomy, error) {
	tx, err := s.types.TaxonomyFor(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}

	newName := ""
	if input.Name != nil {
		newName = *input.Name
	}
	if err := contenttype.GuardTaxonomyMutation(tx, newName); err != nil {
		return nil, err
	}

	before, err := tenantstore.EncodeDocument(tx)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		if !domain.ValidSlug(*input.Name) {
			return nil, apperr.Validation("name", "name must be a url-safe slug")
		}
		tx.Name = *input.Name
	}
	if input.Labels != nil {
		tx.Labels = *input.Labels
	}
	if input.PostTypes != nil {
		tx.PostTypes = input.PostTypes
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(tx)
	if err != nil {
		return nil, err
	}
	if err := col.Update(ctx, tx.ID, doc); err != nil {
		return nil, err
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "taxonomy",
		ObjectID:       tx.ID,
		ObjectLabel:    tx.Name,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return tx, nil
}

// Delete removes a custom taxonomy unless terms still use it
func (s *taxonomyService) Delete(ctx context.Context, actor Principal, tenantID, name string) error {
	tx, err := s.types.TaxonomyFor(ctx, tenantID, name)
	if err != nil {
		return err
	}
	if err := s.types.DeleteTaxonomy(ctx, tenantID, tx); err != nil {
		return err
	}
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "taxonomy",
		ObjectID:       tx.ID,
		ObjectLabel:    tx.Name,
	})
	return nil
}
