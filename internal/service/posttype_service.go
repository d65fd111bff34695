package service

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreatePostTypeInput carries the fields for a custom post type.
type CreatePostTypeInput struct {
	Name         string
	Labels       domain.Labels
	Hierarchical bool
	Supports     map[domain.Capability]bool
	Taxonomies   []string
	ShowInMenu   bool
	MenuPosition int
}

// UpdatePostTypeInput carries optional field updates for a post type.
type UpdatePostTypeInput struct {
	Name         *string
	Labels       *domain.Labels
	Supports     map[domain.Capability]bool
	Taxonomies   []string
	ShowInMenu   *bool
	MenuPosition *int
}

// PostTypeService defines the interface for post type management
type PostTypeService interface {
	// List retrieves all post types of a tenant
	List(ctx context.Context, tenantID string) ([]*domain.PostType, error)
	// GetByName retrieves a post type by name
	GetByName(ctx context.Context, tenantID, name string) (*domain.PostType, error)
	// Create creates a custom post type
	Create(ctx context.Context, actor Principal, tenantID string, input CreatePostTypeInput) (*domain.PostType, error)
	// Update updates a post type; built-in names never change
	Update(ctx context.Context, actor Principal, tenantID, name string, input UpdatePostTypeInput) (*domain.PostType, error)
	// Delete removes a custom post type unless posts still use it
	Delete(ctx context.Context, actor Principal, tenantID, name string) error
}

type postTypeService struct {
	stores  *tenantstore.Registry
	types   *contenttype.Registry
	auditor *audit.Logger
}

// NewPostTypeService creates a new PostTypeService
func NewPostTypeService(stores *tenantstore.Registry, types *contenttype.Registry, auditor *audit.Logger) PostTypeService {
	return &postTypeService{stores: stores, types: types, auditor: auditor}
}

// List retrieves all post types of a tenant
func (s *postTypeService) List(ctx context.Context, tenantID string) ([]*domain.PostType, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, nil, tenantstore.FindOptions{
		Sort: []tenantstore.SortField{{Field: "name"}},
	})
	if err != nil {
		return nil, err
	}
	types := make([]*domain.PostType, 0, len(docs))
	for _, doc := range docs {
		var pt domain.PostType
		if err := tenantstore.DecodeDocument(doc, &pt); err != nil {
			return nil, err
		}
		types = append(types, &pt)
	}
	return types, nil
}

// GetByName retrieves a post type by name
func (s *postTypeService) GetByName(ctx context.Context, tenantID, name string) (*domain.PostType, error) {
	return s.types.PostTypeFor(ctx, tenantID, name)
}

// Create creates a custom post type
func (s *postTypeService) Create(ctx context.Context, actor Principal, tenantID string, input CreatePostTypeInput) (*domain.PostType, error) {
	if !domain.ValidSlug(input.Name) {
		return nil, apperr.Validation("name", "name must be a url-safe slug")
	}
	if input.Labels.Singular == "" {
		return nil, apperr.Validation("labels.singular", "singular label is required")
	}

	pt := domain.PostType{
		Name:         input.Name,
		Labels:       input.Labels,
		Hierarchical: input.Hierarchical,
		Supports:     input.Supports,
		Taxonomies:   input.Taxonomies,
		ShowInMenu:   input.ShowInMenu,
		MenuPosition: input.MenuPosition,
	}
	if pt.Supports == nil {
		pt.Supports = map[domain.Capability]bool{domain.CapTitle: true, domain.CapEditor: true}
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(pt)
	if err != nil {
		return nil, err
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	pt.ID = id

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "post_type",
		ObjectID:       id,
		ObjectLabel:    pt.Name,
	})
	return &pt, nil
}

// Update updates a post type; built-in names never change
func (s *postTypeService) Update(ctx context.Context, actor Principal, tenantID, name string, input UpdatePostTypeInput) (*domain.PostType, error) {
	pt, err := s.types.PostTypeFor(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}

	newName := ""
	if input.Name != nil {
		newName = *input.Name
	}
	if err := contenttype.GuardPostTypeMutation(pt, newName); err != nil {
		return nil, err
	}

	before, err := tenantstore.EncodeDocument(pt)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		if !domain.ValidSlug(*input.Name) {
			return nil, apperr.Validation("name", "name must be a url-safe slug")
		}
		pt.Name = *input.Name
	}
	if input.Labels != nil {
		pt.Labels = *input.Labels
	}
	if input.Supports != nil {
		pt.Supports = input.Supports
	}
	if input.Taxonomies != nil {
		pt.Taxonomies = input.Taxonomies
	}
	if input.ShowInMenu != nil {
		pt.ShowInMenu = *input.ShowInMenu
	}
	if input.MenuPosition != nil {
		pt.MenuPosition = *input.MenuPosition
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(pt)
	if err != nil {
		return nil, err
	}
	if err := col.Update(ctx, pt.ID, doc); err != nil {
		return nil, err
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "post_type",
		ObjectID:       pt.ID,
		ObjectLabel:    pt.Name,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return pt, nil
}

// Delete removes a custom post type unless posts still use it
func (s *postTypeService) Delete(ctx context.Context, actor Principal, tenantID, name string) error {
	pt, err := s.types.PostTypeFor(ctx, tenantID, name)
	if err != nil {
		return err
	}
	if err := s.types.DeletePostType(ctx, tenantID, pt); err != nil {
		return err
	}
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "post_type",
		ObjectID:       pt.ID,
		ObjectLabel:    pt.Name,
	})
	return nil
}
