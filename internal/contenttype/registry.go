// Package contenttype resolves post type and taxonomy definitions per tenant
// and enforces the protection rules around the built-in types.
package contenttype

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// Registry looks up content type definitions through the tenant store.
type Registry struct {
	stores *tenantstore.Registry
}

// NewRegistry creates a Registry over the tenant store.
func NewRegistry(stores *tenantstore.Registry) *Registry {
	return &Registry{stores: stores}
}

// PostTypeFor returns the tenant's post type with the given name.
func (r *Registry) PostTypeFor(ctx context.Context, tenantID, name string) (*domain.PostType, error) {
	col, err := r.stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, tenantstore.Filter{"name": name}, tenantstore.FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("post_type", name)
	}
	var pt domain.PostType
	if err := tenantstore.DecodeDocument(docs[0], &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// TaxonomyFor returns the tenant's taxonomy with the given name.
func (r *Registry) TaxonomyFor(ctx context.Context, tenantID, name string) (*domain.Taxonomy, error) {
	col, err := r.stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, tenantstore.Filter{"name": name}, tenantstore.FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("taxonomy", name)
	}
	var tx domain.Taxonomy
	if err := tenantstore.DecodeDocument(docs[0], &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Supports reports whether the post type exposes the capability. Handlers
// silently drop payload fields for unsupported capabilities rather than
// erroring, since older clients submit them unconditionally.
func (r *Registry) Supports(pt *domain.PostType, capability domain.Capability) bool {
	if pt == nil {
		return false
	}
	return pt.Supports[capability]
}

// GuardPostTypeMutation rejects renames of built-in post types.
func GuardPostTypeMutation(pt *domain.PostType, newName string) error {
	if pt.IsBuiltIn() && newName != "" && newName != pt.Name {
		return apperr.ImmutableBuiltin(pt.Name)
	}
	return nil
}

// GuardPostTypeDeletion rejects deletion of built-in post types.
func GuardPostTypeDeletion(pt *domain.PostType) error {
	if pt.IsBuiltIn() {
		return apperr.ImmutableBuiltin(pt.Name)
	}
	return nil
}

// GuardTaxonomyMutation rejects renames of built-in taxonomies.
func GuardTaxonomyMutation(tx *domain.Taxonomy, newName string) error {
	if tx.IsBuiltIn() && newName != "" && newName != tx.Name {
		return apperr.ImmutableBuiltin(tx.Name)
	}
	return nil
}

// GuardTaxonomyDeletion rejects deletion of built-in taxonomies.
func GuardTaxonomyDeletion(tx *domain.Taxonomy) error {
	if tx.IsBuiltIn() {
		return apperr.ImmutableBuiltin(tx.Name)
	}
	return nil
}

// DeletePostType removes a custom post type unless any post still references
// it. The reference count is evaluated together with the delete.
func (r *Registry) DeletePostType(ctx context.Context, tenantID string, pt *domain.PostType) error {
	if err := GuardPostTypeDeletion(pt); err != nil {
		return err
	}
	col, err := r.stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		return err
	}
	return col.DeleteGuarded(ctx, pt.ID, tenantstore.Guard{
		Kind:   tenantstore.KindPosts,
		Filter: tenantstore.Filter{"type": pt.Name},
	})
}

// DeleteTaxonomy removes a custom taxonomy unless any term still references
// it.
func (r *Registry) DeleteTaxonomy(ctx context.Context, tenantID string, tx *domain.Taxonomy) error {
	if err := GuardTaxonomyDeletion(tx); err != nil {
		return err
	}
	col, err := r.stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		return err
	}
	return col.DeleteGuarded(ctx, tx.ID, tenantstore.Guard{
		Kind:   tenantstore.KindTerms,
		Filter: tenantstore.Filter{"taxonomy": tx.Name},
	})
}
