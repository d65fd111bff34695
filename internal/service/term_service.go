package service

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateTermInput carries the fields for a new term.
type CreateTermInput struct {
	Name     string
	Slug     string
	ParentID string
	ImageID  string
	Meta     map[string]any
}

// UpdateTermInput carries optional field updates for a term.
type UpdateTermInput struct {
	Name     *string
	Slug     *string
	ParentID *string
	ImageID  *string
	Meta     map[string]any
}

// TermService defines the interface for term management
type TermService interface {
	// List retrieves terms of a taxonomy
	List(ctx context.Context, tenantID, taxonomy string, page, limit int) ([]*domain.Term, int64, error)
	// GetByID retrieves a term by ID
	GetByID(ctx context.Context, tenantID, taxonomy, id string) (*domain.Term, error)
	// Create creates a term in a taxonomy
	Create(ctx context.Context, actor Principal, tenantID, taxonomy string, input CreateTermInput) (*domain.Term, error)
	// Update updates a term
	Update(ctx context.Context, actor Principal, tenantID, taxonomy, id string, input UpdateTermInput) (*domain.Term, error)
	// Delete removes a term; blocked while children exist
	Delete(ctx context.Context, actor Principal, tenantID, taxonomy, id string) error
	// AdjustUsage shifts usage counts when post associations change
	AdjustUsage(ctx context.Context, tenantID, taxonomy string, added, removed []string) error
}

type termService struct {
	stores  *tenantstore.Registry
	types   *contenttype.Registry
	auditor *audit.Logger
}

// NewTermService creates a new TermService
func NewTermService(stores *tenantstore.Registry, types *contenttype.Registry, auditor *audit.Logger) TermService {
	return &termService{stores: stores, types: types, auditor: auditor}
}

func (s *termService) collection(ctx context.Context, tenantID string) (tenantstore.Collection, error) {
	return s.stores.Collection(ctx, tenantID, tenantstore.KindTerms)
}

// List retrieves terms of a taxonomy
func (s *termService) List(ctx context.Context, tenantID, taxonomy string, page, limit int) ([]*domain.Term, int64, error) {
	if _, err := s.types.TaxonomyFor(ctx, tenantID, taxonomy); err != nil {
		return nil, 0, err
	}
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	filter := tenantstore.Filter{"taxonomy": taxonomy}
	total, err := col.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	docs, err := col.Find(ctx, filter, tenantstore.FindOptions{
		Sort:   []tenantstore.SortField{{Field: "name"}},
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, err
	}
	terms := make([]*domain.Term, 0, len(docs))
	for _, doc := range docs {
		var term domain.Term
		if err := tenantstore.DecodeDocument(doc, &term); err != nil {
			return nil, 0, err
		}
		terms = append(terms, &term)
	}
	return terms, total, nil
}

// GetByID retrieves a term by ID
func (s *termService) GetByID(ctx context.Context, tenantID, taxonomy, id string) (*domain.Term, error) {
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, err := col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("term", id)
	}
	var term domain.Term
	if err := tenantstore.DecodeDocument(doc, &term); err != nil {
		return nil, err
	}
	if term.Taxonomy != taxonomy {
		return nil, apperr.NotFound("term", id)
	}
	return &term, nil
}

// Create creates a term in a taxonomy
func (s *termService) Create(ctx context.Context, actor Principal, tenantID, taxonomy string, input CreateTermInput) (*domain.Term, error) {
	tx, err := s.types.TaxonomyFor(ctx, tenantID, taxonomy)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, apperr.Validation("name", "name is required")
	}

	slug := input.Slug
	if slug == "" {
		slug = domain.Slugify(input.Name)
	}
	if !domain.ValidSlug(slug) {
		return nil, apperr.Validation("slug", "slug must be url-safe")
	}

	if input.ParentID != "" {
		if !tx.Hierarchical {
			return nil, apperr.Validation("parent_id", "taxonomy is not hierarchical")
		}
		if _, err := s.GetByID(ctx, tenantID, taxonomy, input.ParentID); err != nil {
			return nil, err
		}
	}

	term := domain.Term{
		Taxonomy: taxonomy,
		Name:     input.Name,
		Slug:     slug,
		ParentID: input.ParentID,
		ImageID:  input.ImageID,
		Meta:     input.Meta,
	}

	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(term)
	if err != nil {
		return nil, err
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	term.ID = id

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "term",
		ObjectID:       id,
		ObjectLabel:    term.Name,
	})
	return &term, nil
}

// Update updates a term
func (s *termService) Update(ctx context.Context, actor Principal, tenantID, taxonomy, id string, input UpdateTermInput) (*domain.Term, error) {
	term, err := s.GetByID(ctx, tenantID, taxonomy, id)
	if err != nil {
		return nil, err
	}

	before, err := tenantstore.EncodeDocument(term)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperr.Validation("name", "name is required")
		}
		term.Name = *input.Name
	}
	if input.Slug != nil {
		if !domain.ValidSlug(*input.Slug) {
			return nil, apperr.Validation("slug", "slug must be url-safe")
		}
		term.Slug = *input.Slug
	}
	if input.ParentID != nil {
		if *input.ParentID != "" {
			tx, err := s.types.TaxonomyFor(ctx, tenantID, taxonomy)
			if err != nil {
				return nil, err
			}
			if !tx.Hierarchical {
				return nil, apperr.Validation("parent_id", "taxonomy is not hierarchical")
			}
			if err := s.checkAncestry(ctx, tenantID, taxonomy, id, *input.ParentID); err != nil {
				return nil, err
			}
		}
		term.ParentID = *input.ParentID
	}
	if input.ImageID != nil {
		term.ImageID = *input.ImageID
	}
	if input.Meta != nil {
		term.Meta = input.Meta
	}

	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(term)
	if err != nil {
		return nil, err
	}
	if err := col.Update(ctx, id, doc); err != nil {
		return nil, err
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "term",
		ObjectID:       id,
		ObjectLabel:    term.Name,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return term, nil
}

// checkAncestry rejects a parent assignment that would make the term its own
// ancestor. The walk is bounded by the tree size so a pre-existing cycle
// cannot hang it.
func (s *termService) checkAncestry(ctx context.Context, tenantID, taxonomy, termID, parentID string) error {
	if parentID == termID {
		return apperr.Validation("parent_id", "a term cannot be its own parent")
	}
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	seen := map[string]bool{termID: true}
	current := parentID
	for current != "" {
		if seen[current] {
			return apperr.Validation("parent_id", "a term cannot be its own ancestor")
		}
		seen[current] = true
		doc, err := col.Get(ctx, current)
		if err != nil {
			return err
		}
		if doc == nil {
			return apperr.NotFound("term", current)
		}
		parent, _ := doc["parent_id"].(string)
		current = parent
	}
	return nil
}

// Delete removes a term; blocked while children exist
func (s *termService) Delete(ctx context.Context, actor Principal, tenantID, taxonomy, id string) error {
	term, err := s.GetByID(ctx, tenantID, taxonomy, id)
	if err != nil {
		return err
	}
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	err = col.DeleteGuarded(ctx, id, tenantstore.Guard{
		Kind:   tenantstore.KindTerms,
		Filter: tenantstore.Filter{"taxonomy": taxonomy, "parent_id": id},
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "term",
		ObjectID:       id,
		ObjectLabel:    term.Name,
	})
	return nil
}

// AdjustUsage shifts usage counts when post associations change. Counts are
// advisory for listings; the post-term relation itself stays the source of
// truth.
func (s *termService) AdjustUsage(ctx context.Context, tenantID, taxonomy string, added, removed []string) error {
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	apply := func(ids []string, delta int64) error {
		for _, id := range ids {
			doc, err := col.Get(ctx, id)
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			var term domain.Term
			if err := tenantstore.DecodeDocument(doc, &term); err != nil {
				return err
			}
			term.Count += delta
			if term.Count < 0 {
				term.Count = 0
			}
			updated, err := tenantstore.EncodeDocument(term)
			if err != nil {
				return err
			}
			if err := col.Update(ctx, id, updated); err != nil {
				return err
			}
		}
		return nil
	}
	if err := apply(added, 1); err != nil {
		return err
	}
	return apply(removed, -1)
}
