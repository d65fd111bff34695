package tenantstore

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

func newTestCollection(t *testing.T, kind Kind) Collection {
	t.Helper()
	return NewMemoryStrategy().Collection(uuid.New().String(), kind)
}

func TestMemoryCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, KindPosts)

	id, err := col.Insert(ctx, Document{"type": "post", "slug": "first", "title": "First"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	doc, err := col.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc == nil {
		t.Fatal("Get() returned nil for existing document")
	}
	if doc["title"] != "First" {
		t.Errorf("Get() title = %v, want First", doc["title"])
	}
	if doc["id"] != id {
		t.Errorf("Get() id = %v, want %v", doc["id"], id)
	}

	if err := col.Update(ctx, id, Document{"type": "post", "slug": "first", "title": "Renamed"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	doc, _ = col.Get(ctx, id)
	if doc["title"] != "Renamed" {
		t.Errorf("title after update = %v, want Renamed", doc["title"])
	}

	if err := col.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	doc, err = col.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if doc != nil {
		t.Error("Get() after delete should return nil")
	}
}

func TestMemoryCollectionMissing(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, KindPosts)

	doc, err := col.Get(ctx, uuid.New().String())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc != nil {
		t.Error("Get() for unknown id should return nil, nil")
	}

	err = col.Update(ctx, uuid.New().String(), Document{"type": "post", "slug": "x"})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Update() unknown id: expected NOT_FOUND, got %v", err)
	}

	if err := col.Delete(ctx, uuid.New().String()); err != nil {
		t.Errorf("Delete() unknown id should be a no-op, got %v", err)
	}
}

func TestMemoryUniqueConstraints(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate slug within post type conflicts", func(t *testing.T) {
		col := newTestCollection(t, KindPosts)
		if _, err := col.Insert(ctx, Document{"type": "post", "slug": "hello"}); err != nil {
			t.Fatalf("first Insert() error = %v", err)
		}
		_, err := col.Insert(ctx, Document{"type": "post", "slug": "hello"})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})

	t.Run("same slug under another post type is allowed", func(t *testing.T) {
		col := newTestCollection(t, KindPosts)
		if _, err := col.Insert(ctx, Document{"type": "post", "slug": "hello"}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if _, err := col.Insert(ctx, Document{"type": "page", "slug": "hello"}); err != nil {
			t.Errorf("Insert() with different type should succeed, got %v", err)
		}
	})

	t.Run("update into duplicate conflicts", func(t *testing.T) {
		col := newTestCollection(t, KindTerms)
		if _, err := col.Insert(ctx, Document{"taxonomy": "category", "slug": "news"}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		id, err := col.Insert(ctx, Document{"taxonomy": "category", "slug": "sports"})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		err = col.Update(ctx, id, Document{"taxonomy": "category", "slug": "news"})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})

	t.Run("partial constraint ignores empty values", func(t *testing.T) {
		col := newTestCollection(t, KindMenus)
		if _, err := col.Insert(ctx, Document{"slug": "main", "location": ""}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if _, err := col.Insert(ctx, Document{"slug": "footer", "location": ""}); err != nil {
			t.Errorf("two menus without a location should not conflict, got %v", err)
		}
		if _, err := col.Insert(ctx, Document{"slug": "header", "location": "header"}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		_, err := col.Insert(ctx, Document{"slug": "other", "location": "header"})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("duplicate location should conflict, got %v", err)
		}
	})
}

func TestMemoryFindAndCount(t *testing.T) {
	ctx := context.Background()
	col := newTestCollection(t, KindPosts)

	for _, doc := range []Document{
		{"type": "post", "slug": "a", "status": "published"},
		{"type": "post", "slug": "b", "status": "draft"},
		{"type": "post", "slug": "c", "status": "published"},
		{"type": "page", "slug": "d", "status": "published"},
	} {
		if _, err := col.Insert(ctx, doc); err != nil {
			t.Fatalf("Insert(%v) error = %v", doc["slug"], err)
		}
	}

	docs, err := col.Find(ctx, Filter{"type": "post", "status": "published"}, FindOptions{})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Find() returned %d documents, want 2", len(docs))
	}

	count, err := col.Count(ctx, Filter{"status": "published"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	docs, err = col.Find(ctx, Filter{"type": "post"}, FindOptions{
		Sort:  []SortField{{Field: "slug", Desc: true}},
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("Find() with options error = %v", err)
	}
	if len(docs) != 2 || docs[0]["slug"] != "c" || docs[1]["slug"] != "b" {
		t.Errorf("Find() with sort/limit returned wrong order: %v", docs)
	}
}

func TestMemoryDeleteGuarded(t *testing.T) {
	ctx := context.Background()
	strategy := NewMemoryStrategy()
	tenantID := uuid.New().String()
	taxonomies := strategy.Collection(tenantID, KindTaxonomies)
	terms := strategy.Collection(tenantID, KindTerms)

	taxID, err := taxonomies.Insert(ctx, Document{"name": "genre"})
	if err != nil {
		t.Fatalf("Insert(taxonomy) error = %v", err)
	}
	if _, err := terms.Insert(ctx, Document{"taxonomy": "genre", "slug": "jazz"}); err != nil {
		t.Fatalf("Insert(term) error = %v", err)
	}

	guard := Guard{Kind: KindTerms, Filter: Filter{"taxonomy": "genre"}}
	err = taxonomies.DeleteGuarded(ctx, taxID, guard)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindInUse {
		t.Fatalf("expected IN_USE, got %v", err)
	}
	if appErr.Count != 1 {
		t.Errorf("IN_USE count = %d, want 1", appErr.Count)
	}

	// Still present after the blocked delete.
	if doc, _ := taxonomies.Get(ctx, taxID); doc == nil {
		t.Fatal("taxonomy should survive a blocked guarded delete")
	}

	termDocs, _ := terms.Find(ctx, nil, FindOptions{})
	if err := terms.Delete(ctx, termDocs[0]["id"].(string)); err != nil {
		t.Fatalf("Delete(term) error = %v", err)
	}
	if err := taxonomies.DeleteGuarded(ctx, taxID, guard); err != nil {
		t.Fatalf("DeleteGuarded() with no references error = %v", err)
	}
	if doc, _ := taxonomies.Get(ctx, taxID); doc != nil {
		t.Error("taxonomy should be gone after successful guarded delete")
	}
}
