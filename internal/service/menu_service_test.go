package service

import (
	"context"
	"testing"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/menu"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

func newMenuFixture(t *testing.T) (*testEnv, MenuService, PostService) {
	t.Helper()
	env := newTestEnv(t, testTenant)
	terms := NewTermService(env.stores, env.types, env.auditor)
	posts := NewPostService(env.stores, env.types, terms, env.auditor)
	menus := NewMenuService(env.stores, env.types, env.auditor)
	return env, menus, posts
}

func TestCreateMenu(t *testing.T) {
	_, menus, _ := newMenuFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "admin-1"}

	t.Run("slug defaults from name", func(t *testing.T) {
		m, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Main Navigation"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if m.Slug != "main-navigation" {
			t.Errorf("expected slug main-navigation, got %q", m.Slug)
		}
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		_, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Main Navigation"})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})

	t.Run("location is exclusive", func(t *testing.T) {
		if _, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Header", Location: "header"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		_, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Header Two", Location: "header"})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected CONFLICT for the taken location, got %v", err)
		}
	})

	t.Run("empty location is not exclusive", func(t *testing.T) {
		if _, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Floating One"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Floating Two"}); err != nil {
			t.Fatalf("create second unassigned menu: %v", err)
		}
	})
}

func TestMenuItems(t *testing.T) {
	_, menus, posts := newMenuFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "admin-1"}

	m, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	about, err := posts.Create(ctx, actor, testTenant, "page", CreatePostInput{Title: "About Us"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	t.Run("sort order defaults to the end", func(t *testing.T) {
		first, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
			Ref: domain.PostRef{PostID: about.ID},
		})
		if err != nil {
			t.Fatalf("add item: %v", err)
		}
		if first.SortOrder != 1 {
			t.Errorf("expected order 1, got %d", first.SortOrder)
		}
		second, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
			Ref: domain.CustomRef{URL: "https://example.com", Label: "External"},
		})
		if err != nil {
			t.Fatalf("add item: %v", err)
		}
		if second.SortOrder != 2 {
			t.Errorf("expected order 2, got %d", second.SortOrder)
		}
	})

	t.Run("explicit order zero kept", func(t *testing.T) {
		zero := 0
		home, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
			SortOrder: &zero,
			Ref:       domain.CustomRef{URL: "/", Label: "Home"},
		})
		if err != nil {
			t.Fatalf("add item: %v", err)
		}
		if home.SortOrder != 0 {
			t.Errorf("expected order 0 honored, got %d", home.SortOrder)
		}
		items, err := menus.ListItems(ctx, testTenant, m.ID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		if items[0].ID != home.ID {
			t.Errorf("expected the zero-ordered item listed first, got %s", items[0].ID)
		}
	})

	t.Run("item without a target rejected", func(t *testing.T) {
		_, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{Label: "Nothing"})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("reference survives a round trip", func(t *testing.T) {
		items, err := menus.ListItems(ctx, testTenant, m.ID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		var foundPost, foundCustom bool
		for _, item := range items {
			switch ref := item.Ref.(type) {
			case domain.PostRef:
				foundPost = ref.PostID == about.ID
			case domain.CustomRef:
				foundCustom = ref.URL == "https://example.com"
			}
		}
		if !foundPost || !foundCustom {
			t.Errorf("expected both references decoded, post=%v custom=%v", foundPost, foundCustom)
		}
	})
}

func TestMenuItemHierarchy(t *testing.T) {
	_, menus, _ := newMenuFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "admin-1"}

	m, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	parent, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		Ref: domain.CustomRef{URL: "/a", Label: "A"},
	})
	if err != nil {
		t.Fatalf("add parent: %v", err)
	}
	child, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		ParentID: parent.ID,
		Ref:      domain.CustomRef{URL: "/a/b", Label: "B"},
	})
	if err != nil {
		t.Fatalf("add child: %v", err)
	}

	t.Run("parent with children cannot be deleted", func(t *testing.T) {
		err := menus.DeleteItem(ctx, actor, testTenant, m.ID, parent.ID)
		if apperr.KindOf(err) != apperr.KindInUse {
			t.Errorf("expected IN_USE, got %v", err)
		}
	})

	t.Run("leaf deletes fine", func(t *testing.T) {
		if err := menus.DeleteItem(ctx, actor, testTenant, m.ID, child.ID); err != nil {
			t.Fatalf("delete leaf: %v", err)
		}
		if err := menus.DeleteItem(ctx, actor, testTenant, m.ID, parent.ID); err != nil {
			t.Fatalf("delete former parent: %v", err)
		}
	})

	t.Run("cycle via parent update rejected", func(t *testing.T) {
		a, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
			Ref: domain.CustomRef{URL: "/x", Label: "X"},
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		b, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
			ParentID: a.ID,
			Ref:      domain.CustomRef{URL: "/x/y", Label: "Y"},
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		_, err = menus.UpdateItem(ctx, actor, testTenant, m.ID, a.ID, UpdateMenuItemInput{ParentID: &b.ID})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED for the cycle, got %v", err)
		}
	})
}

func TestMenuTree(t *testing.T) {
	_, menus, posts := newMenuFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "admin-1"}

	m, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	about, err := posts.Create(ctx, actor, testTenant, "page", CreatePostInput{Title: "About Us"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	top, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		Ref: domain.PostRef{PostID: about.ID},
	})
	if err != nil {
		t.Fatalf("add top: %v", err)
	}
	if _, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		ParentID: top.ID,
		Ref:      domain.PostTypeRef{PostType: "post"},
	}); err != nil {
		t.Fatalf("add child: %v", err)
	}
	if _, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		Ref: domain.PostRef{PostID: "deleted-post"},
	}); err != nil {
		t.Fatalf("add dangling: %v", err)
	}

	nodes, err := menus.Tree(ctx, testTenant, m.ID)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(nodes))
	}

	if nodes[0].Label != "About Us" {
		t.Errorf("expected post title as label, got %q", nodes[0].Label)
	}
	if len(nodes[0].Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(nodes[0].Children))
	}
	if nodes[0].Children[0].Label != "Posts" {
		t.Errorf("expected post type plural label, got %q", nodes[0].Children[0].Label)
	}
	if !nodes[1].Missing {
		t.Error("expected the dangling reference marked missing")
	}
}

func TestMenuReorder(t *testing.T) {
	_, menus, _ := newMenuFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "admin-1"}

	m, err := menus.Create(ctx, actor, testTenant, CreateMenuInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	a, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		Ref: domain.CustomRef{URL: "/a", Label: "A"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := menus.AddItem(ctx, actor, testTenant, m.ID, CreateMenuItemInput{
		Ref: domain.CustomRef{URL: "/b", Label: "B"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	report, err := menus.Reorder(ctx, actor, testTenant, m.ID, []menu.ReorderChange{
		{ID: b.ID, NewOrder: 1},
		{ID: a.ID, NewOrder: 2},
		{ID: "missing-item", NewOrder: 3},
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if len(report.Applied) != 2 {
		t.Errorf("expected 2 applied, got %v", report.Applied)
	}
	if len(report.Failures) != 1 || report.Failures[0].ID != "missing-item" {
		t.Errorf("expected the unknown item reported, got %v", report.Failures)
	}

	items, err := menus.ListItems(ctx, testTenant, m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].ID != b.ID {
		t.Errorf("expected %s first after reorder, got %s", b.ID, items[0].ID)
	}
}
