package service

import (
	"context"
	"testing"
	"time"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

const testTenant = "11111111-2222-3333-4444-555555555555"

func newPostFixture(t *testing.T) (*testEnv, PostService, TermService) {
	t.Helper()
	env := newTestEnv(t, testTenant)
	terms := NewTermService(env.stores, env.types, env.auditor)
	posts := NewPostService(env.stores, env.types, terms, env.auditor)
	return env, posts, terms
}

func TestCreatePost(t *testing.T) {
	_, posts, _ := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	t.Run("slug defaults from title", func(t *testing.T) {
		post, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title:   "Hello, World!",
			Content: "first",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if post.Slug != "hello-world" {
			t.Errorf("expected slug hello-world, got %q", post.Slug)
		}
		if post.Status != domain.StatusDraft {
			t.Errorf("expected draft default, got %s", post.Status)
		}
		if post.AuthorID != "author-1" {
			t.Errorf("expected author recorded, got %q", post.AuthorID)
		}
	})

	t.Run("duplicate slug within type conflicts", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title: "Hello, World!",
		})
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})

	t.Run("same slug allowed on another type", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "page", CreatePostInput{
			Title: "Hello, World!",
		})
		if err != nil {
			t.Fatalf("create page: %v", err)
		}
	})

	t.Run("unknown post type", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "widget", CreatePostInput{Title: "x"})
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title:  "Status Check",
			Status: "bogus",
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})
}

func TestPostCapabilityGating(t *testing.T) {
	_, posts, _ := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	// Pages support neither excerpt nor categories.
	post, err := posts.Create(ctx, actor, testTenant, "page", CreatePostInput{
		Title:   "About Us",
		Content: "body",
		Excerpt: "should be dropped",
		Terms:   map[string][]string{"category": {"some-term"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Excerpt != "" {
		t.Errorf("expected excerpt dropped, got %q", post.Excerpt)
	}
	if post.Terms != nil {
		t.Errorf("expected term associations dropped, got %v", post.Terms)
	}
	if post.Content != "body" {
		t.Errorf("expected supported content kept, got %q", post.Content)
	}
}

func TestPostScheduling(t *testing.T) {
	env, posts, _ := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	t.Run("scheduled without a time rejected", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title:  "Future Post",
			Status: domain.StatusScheduled,
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("scheduled in the past rejected", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title:       "Old News",
			Status:      domain.StatusScheduled,
			ScheduledAt: &past,
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("publishing stamps published_at once", func(t *testing.T) {
		post, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title:  "Live Post",
			Status: domain.StatusPublished,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if post.PublishedAt == nil {
			t.Fatal("expected published_at set")
		}
		first := *post.PublishedAt

		draft := domain.StatusDraft
		if _, err := posts.Update(ctx, actor, testTenant, "post", post.ID, UpdatePostInput{Status: &draft}); err != nil {
			t.Fatalf("unpublish: %v", err)
		}
		published := domain.StatusPublished
		updated, err := posts.Update(ctx, actor, testTenant, "post", post.ID, UpdatePostInput{Status: &published})
		if err != nil {
			t.Fatalf("republish: %v", err)
		}
		if updated.PublishedAt == nil || !updated.PublishedAt.Equal(first) {
			t.Error("expected the original publish time preserved")
		}
	})

	t.Run("arrived schedule reads as published", func(t *testing.T) {
		col, err := env.stores.Collection(ctx, testTenant, tenantstore.KindPosts)
		if err != nil {
			t.Fatalf("collection: %v", err)
		}
		past := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
		id, err := col.Insert(ctx, tenantstore.Document{
			"type":         "post",
			"title":        "Queued",
			"slug":         "queued",
			"status":       string(domain.StatusScheduled),
			"author_id":    "author-1",
			"visibility":   string(domain.VisibilityPublic),
			"scheduled_at": past.Format(time.RFC3339Nano),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		post, err := posts.GetByID(ctx, testTenant, "post", id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if post.Status != domain.StatusPublished {
			t.Errorf("expected published at read time, got %s", post.Status)
		}
		if post.PublishedAt == nil || !post.PublishedAt.Equal(past) {
			t.Errorf("expected published_at backfilled from the schedule, got %v", post.PublishedAt)
		}
	})
}

func TestPostParent(t *testing.T) {
	_, posts, _ := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	parent, err := posts.Create(ctx, actor, testTenant, "page", CreatePostInput{Title: "Parent"})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	t.Run("hierarchical type accepts a parent", func(t *testing.T) {
		child, err := posts.Create(ctx, actor, testTenant, "page", CreatePostInput{
			Title:    "Child",
			ParentID: parent.ID,
		})
		if err != nil {
			t.Fatalf("create child: %v", err)
		}
		if child.ParentID != parent.ID {
			t.Errorf("expected parent %s, got %s", parent.ID, child.ParentID)
		}
	})

	t.Run("flat type rejects a parent", func(t *testing.T) {
		other, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{Title: "Flat"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		_, err = posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title:    "Flat Child",
			ParentID: other.ID,
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("self parent rejected", func(t *testing.T) {
		_, err := posts.Update(ctx, actor, testTenant, "page", parent.ID, UpdatePostInput{
			ParentID: &parent.ID,
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})
}

func TestPostTermUsageCounts(t *testing.T) {
	_, posts, terms := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	news, err := terms.Create(ctx, actor, testTenant, "category", CreateTermInput{Name: "News"})
	if err != nil {
		t.Fatalf("create term: %v", err)
	}
	tech, err := terms.Create(ctx, actor, testTenant, "category", CreateTermInput{Name: "Tech"})
	if err != nil {
		t.Fatalf("create term: %v", err)
	}

	usage := func(id string) int64 {
		t.Helper()
		term, err := terms.GetByID(ctx, testTenant, "category", id)
		if err != nil {
			t.Fatalf("get term: %v", err)
		}
		return term.Count
	}

	post, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
		Title: "Counted",
		Terms: map[string][]string{"category": {news.ID}},
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if got := usage(news.ID); got != 1 {
		t.Errorf("expected news count 1 after create, got %d", got)
	}

	_, err = posts.Update(ctx, actor, testTenant, "post", post.ID, UpdatePostInput{
		Terms: map[string][]string{"category": {tech.ID}},
	})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if got := usage(news.ID); got != 0 {
		t.Errorf("expected news count back to 0, got %d", got)
	}
	if got := usage(tech.ID); got != 1 {
		t.Errorf("expected tech count 1, got %d", got)
	}

	if err := posts.Delete(ctx, actor, testTenant, "post", post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if got := usage(tech.ID); got != 0 {
		t.Errorf("expected tech count 0 after delete, got %d", got)
	}
}

func TestPostTermValidation(t *testing.T) {
	_, posts, _ := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	t.Run("unattached taxonomy rejected", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title: "Bad Terms",
			Terms: map[string][]string{"genre": {"x"}},
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("unknown term rejected", func(t *testing.T) {
		_, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
			Title: "Missing Term",
			Terms: map[string][]string{"category": {"does-not-exist"}},
		})
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})
}

func TestListPosts(t *testing.T) {
	_, posts, _ := newPostFixture(t)
	ctx := context.Background()
	actor := Principal{UserID: "author-1"}

	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{Title: title}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	if _, err := posts.Create(ctx, actor, testTenant, "post", CreatePostInput{
		Title:  "Live",
		Status: domain.StatusPublished,
	}); err != nil {
		t.Fatalf("create published: %v", err)
	}

	t.Run("all posts of the type", func(t *testing.T) {
		list, total, err := posts.List(ctx, testTenant, "post", 1, 10, ListPostsFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 4 || len(list) != 4 {
			t.Errorf("expected 4 posts, got total=%d len=%d", total, len(list))
		}
	})

	t.Run("status filter", func(t *testing.T) {
		list, total, err := posts.List(ctx, testTenant, "post", 1, 10, ListPostsFilter{Status: domain.StatusPublished})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 || len(list) != 1 {
			t.Errorf("expected 1 published post, got total=%d len=%d", total, len(list))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		list, total, err := posts.List(ctx, testTenant, "post", 2, 3, ListPostsFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 4 || len(list) != 1 {
			t.Errorf("expected page 2 with 1 post, got total=%d len=%d", total, len(list))
		}
	})
}
