// Package tenantstore scopes document collections to a tenant. All
// tenant-partitioned data access goes through a Registry handle; no call
// site queries shared storage directly.
package tenantstore

import (
	"context"
	"sort"
)

// Kind identifies a tenant-scoped collection.
type Kind string

const (
	KindPostTypes  Kind = "post_types"
	KindTaxonomies Kind = "taxonomies"
	KindTerms      Kind = "terms"
	KindPosts      Kind = "posts"
	KindMenus      Kind = "menus"
	KindMenuItems  Kind = "menu_items"
	KindMedia      Kind = "media"
	KindSettings   Kind = "settings"
)

// AllKinds returns every collection kind, in provisioning order.
func AllKinds() []Kind {
	return []Kind{
		KindPostTypes, KindTaxonomies, KindTerms, KindPosts,
		KindMenus, KindMenuItems, KindMedia, KindSettings,
	}
}

// ValidKind reports whether k names a known collection kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindPostTypes, KindTaxonomies, KindTerms, KindPosts,
		KindMenus, KindMenuItems, KindMedia, KindSettings:
		return true
	}
	return false
}

// Document is a stored record. Reads return documents with "id",
// "created_at" and "updated_at" merged in; writes must not include them.
type Document = map[string]any

// Filter matches documents whose fields equal the given values. Values are
// compared by their text form.
type Filter map[string]any

// SortField orders results by a document field.
type SortField struct {
	Field string
	Desc  bool
}

// FindOptions control Find result ordering and pagination. A zero Limit
// returns all matches.
type FindOptions struct {
	Sort   []SortField
	Limit  int
	Offset int
}

// Guard names a referencing collection and filter whose match count must be
// zero for a guarded delete to proceed. The count is evaluated together with
// the delete, never from an earlier read.
type Guard struct {
	Kind   Kind
	Filter Filter
}

// Collection is a tenant-scoped document store handle. Handles are cheap
// value objects and safe for concurrent use; they carry no data, only the
// resolved target.
type Collection interface {
	// Insert stores a new document and returns its generated id. A unique
	// constraint violation returns a Conflict error.
	Insert(ctx context.Context, doc Document) (string, error)
	// Get returns the document with the given id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (Document, error)
	// Find returns documents matching the filter.
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]Document, error)
	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)
	// Update replaces the document with the given id. A unique constraint
	// violation returns a Conflict error; a missing id returns NotFound.
	Update(ctx context.Context, id string, doc Document) error
	// Delete removes the document with the given id. Missing ids are not an
	// error.
	Delete(ctx context.Context, id string) error
	// DeleteGuarded removes the document only when the guard count is zero,
	// evaluated atomically with the delete. A non-zero count returns an
	// InUse error carrying the count.
	DeleteGuarded(ctx context.Context, id string, guard Guard) error
}

// Strategy constructs collections for a tenant and manages their lifecycle.
type Strategy interface {
	Collection(tenantID string, kind Kind) Collection
	// Provision creates the tenant's physical storage, including unique
	// indexes. Idempotent.
	Provision(ctx context.Context, tenantID string) error
	// Destroy removes all of the tenant's stored data.
	Destroy(ctx context.Context, tenantID string) error
}

// UniqueConstraint declares that the combination of Fields must be unique
// within one tenant's collection. When Partial is set, only documents where
// every constrained field is non-empty participate.
type UniqueConstraint struct {
	Name    string
	Fields  []string
	Partial bool
}

// Constraints returns the unique constraints enforced for a kind. Strategies
// install these at provisioning time; the constraint, not any pre-check
// query, is what makes concurrent duplicate writes safe.
func Constraints(kind Kind) []UniqueConstraint {
	switch kind {
	case KindPostTypes:
		return []UniqueConstraint{{Name: "name", Fields: []string{"name"}}}
	case KindTaxonomies:
		return []UniqueConstraint{{Name: "name", Fields: []string{"name"}}}
	case KindTerms:
		return []UniqueConstraint{{Name: "taxonomy_slug", Fields: []string{"taxonomy", "slug"}}}
	case KindPosts:
		return []UniqueConstraint{{Name: "type_slug", Fields: []string{"type", "slug"}}}
	case KindMenus:
		return []UniqueConstraint{
			{Name: "slug", Fields: []string{"slug"}},
			{Name: "location", Fields: []string{"location"}, Partial: true},
		}
	case KindSettings:
		return []UniqueConstraint{{Name: "key", Fields: []string{"key"}}}
	}
	return nil
}

// sortedKeys returns filter keys in stable order so generated queries are
// deterministic.
func sortedKeys(filter Filter) []string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
