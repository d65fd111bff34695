package contenttype

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

type allowAllTenants struct{}

func (allowAllTenants) CheckTenant(ctx context.Context, tenantID string) error { return nil }

func newTestRegistry(t *testing.T) (*Registry, *tenantstore.Registry, string) {
	t.Helper()
	stores := tenantstore.NewRegistry(tenantstore.NewMemoryStrategy(), allowAllTenants{})
	tenantID := uuid.New().String()

	ctx := context.Background()
	col, err := stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		t.Fatalf("Collection(post_types) error = %v", err)
	}
	for _, pt := range domain.DefaultPostTypes() {
		doc, err := tenantstore.EncodeDocument(pt)
		if err != nil {
			t.Fatalf("EncodeDocument() error = %v", err)
		}
		if _, err := col.Insert(ctx, doc); err != nil {
			t.Fatalf("Insert(post type %s) error = %v", pt.Name, err)
		}
	}
	taxCol, err := stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		t.Fatalf("Collection(taxonomies) error = %v", err)
	}
	for _, tx := range domain.DefaultTaxonomies() {
		doc, err := tenantstore.EncodeDocument(tx)
		if err != nil {
			t.Fatalf("EncodeDocument() error = %v", err)
		}
		if _, err := taxCol.Insert(ctx, doc); err != nil {
			t.Fatalf("Insert(taxonomy %s) error = %v", tx.Name, err)
		}
	}
	return NewRegistry(stores), stores, tenantID
}

func TestPostTypeFor(t *testing.T) {
	reg, _, tenantID := newTestRegistry(t)
	ctx := context.Background()

	pt, err := reg.PostTypeFor(ctx, tenantID, "post")
	if err != nil {
		t.Fatalf("PostTypeFor() error = %v", err)
	}
	if pt.Name != "post" || !pt.IsBuiltIn() {
		t.Errorf("PostTypeFor() returned %+v, want built-in post", pt)
	}
	if pt.ID == "" {
		t.Error("resolved post type should carry its store id")
	}

	_, err = reg.PostTypeFor(ctx, tenantID, "event")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown post type: expected NOT_FOUND, got %v", err)
	}
}

func TestSupports(t *testing.T) {
	reg, _, tenantID := newTestRegistry(t)
	ctx := context.Background()

	post, err := reg.PostTypeFor(ctx, tenantID, "post")
	if err != nil {
		t.Fatalf("PostTypeFor(post) error = %v", err)
	}
	page, err := reg.PostTypeFor(ctx, tenantID, "page")
	if err != nil {
		t.Fatalf("PostTypeFor(page) error = %v", err)
	}

	tests := []struct {
		name       string
		pt         *domain.PostType
		capability domain.Capability
		want       bool
	}{
		{"post supports excerpt", post, domain.CapExcerpt, true},
		{"post supports categories", post, domain.CapCategories, true},
		{"page does not support excerpt", page, domain.CapExcerpt, false},
		{"page supports title", page, domain.CapTitle, true},
		{"nil post type supports nothing", nil, domain.CapTitle, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Supports(tt.pt, tt.capability); got != tt.want {
				t.Errorf("Supports(%v) = %v, want %v", tt.capability, got, tt.want)
			}
		})
	}
}

func TestBuiltinProtection(t *testing.T) {
	reg, _, tenantID := newTestRegistry(t)
	ctx := context.Background()

	post, _ := reg.PostTypeFor(ctx, tenantID, "post")
	category, _ := reg.TaxonomyFor(ctx, tenantID, "category")

	if err := GuardPostTypeMutation(post, "article"); apperr.KindOf(err) != apperr.KindImmutableBuiltin {
		t.Errorf("renaming built-in post type: expected IMMUTABLE_BUILTIN, got %v", err)
	}
	if err := GuardPostTypeMutation(post, "post"); err != nil {
		t.Errorf("keeping the name should pass, got %v", err)
	}
	if err := reg.DeletePostType(ctx, tenantID, post); apperr.KindOf(err) != apperr.KindImmutableBuiltin {
		t.Errorf("deleting built-in post type: expected IMMUTABLE_BUILTIN, got %v", err)
	}
	if err := GuardTaxonomyMutation(category, "section"); apperr.KindOf(err) != apperr.KindImmutableBuiltin {
		t.Errorf("renaming built-in taxonomy: expected IMMUTABLE_BUILTIN, got %v", err)
	}
	if err := reg.DeleteTaxonomy(ctx, tenantID, category); apperr.KindOf(err) != apperr.KindImmutableBuiltin {
		t.Errorf("deleting built-in taxonomy: expected IMMUTABLE_BUILTIN, got %v", err)
	}
}

func TestDeleteCustomPostType(t *testing.T) {
	reg, stores, tenantID := newTestRegistry(t)
	ctx := context.Background()

	ptCol, _ := stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	doc, _ := tenantstore.EncodeDocument(domain.PostType{
		Name:   "event",
		Labels: domain.Labels{Singular: "Event", Plural: "Events"},
	})
	if _, err := ptCol.Insert(ctx, doc); err != nil {
		t.Fatalf("Insert(event) error = %v", err)
	}

	postCol, _ := stores.Collection(ctx, tenantID, tenantstore.KindPosts)
	postID, err := postCol.Insert(ctx, tenantstore.Document{"type": "event", "slug": "launch"})
	if err != nil {
		t.Fatalf("Insert(post) error = %v", err)
	}

	event, err := reg.PostTypeFor(ctx, tenantID, "event")
	if err != nil {
		t.Fatalf("PostTypeFor(event) error = %v", err)
	}

	err = reg.DeletePostType(ctx, tenantID, event)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindInUse {
		t.Fatalf("expected IN_USE while posts reference the type, got %v", err)
	}
	if appErr.Count != 1 {
		t.Errorf("IN_USE count = %d, want 1", appErr.Count)
	}

	if err := postCol.Delete(ctx, postID); err != nil {
		t.Fatalf("Delete(post) error = %v", err)
	}
	if err := reg.DeletePostType(ctx, tenantID, event); err != nil {
		t.Fatalf("DeletePostType() with no references error = %v", err)
	}
	if _, err := reg.PostTypeFor(ctx, tenantID, "event"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("deleted post type should be NOT_FOUND, got %v", err)
	}
}
