package service

import (
	"context"
	"time"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreatePostInput carries the write payload for a new post. Fields gated by
// an unsupported capability are dropped, not rejected.
type CreatePostInput struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	Status          domain.PostStatus
	ParentID        string
	Visibility      domain.PostVisibility
	Password        string
	FeaturedImageID string
	Fields          map[string]any
	Terms           map[string][]string
	ScheduledAt     *time.Time
}

// UpdatePostInput carries optional field updates for a post.
type UpdatePostInput struct {
	Title           *string
	Slug            *string
	Content         *string
	Excerpt         *string
	Status          *domain.PostStatus
	ParentID        *string
	Visibility      *domain.PostVisibility
	Password        *string
	FeaturedImageID *string
	Fields          map[string]any
	Terms           map[string][]string
	ScheduledAt     *time.Time
}

// ListPostsFilter narrows post listings.
type ListPostsFilter struct {
	Status   domain.PostStatus
	Author   string
	ParentID string
}

// PostService defines the interface for post management
type PostService interface {
	// List retrieves posts of a post type
	List(ctx context.Context, tenantID, postType string, page, limit int, filter ListPostsFilter) ([]*domain.Post, int64, error)
	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, tenantID, postType, id string) (*domain.Post, error)
	// Create creates a post of the given type
	Create(ctx context.Context, actor Principal, tenantID, postType string, input CreatePostInput) (*domain.Post, error)
	// Update updates a post
	Update(ctx context.Context, actor Principal, tenantID, postType, id string, input UpdatePostInput) (*domain.Post, error)
	// Delete permanently removes a post
	Delete(ctx context.Context, actor Principal, tenantID, postType, id string) error
}

type postService struct {
	stores  *tenantstore.Registry
	types   *contenttype.Registry
	terms   TermService
	auditor *audit.Logger
}

// NewPostService creates a new PostService
func NewPostService(stores *tenantstore.Registry, types *contenttype.Registry, terms TermService, auditor *audit.Logger) PostService {
	return &postService{stores: stores, types: types, terms: terms, auditor: auditor}
}

func (s *postService) collection(ctx context.Context, tenantID string) (tenantstore.Collection, error) {
	return s.stores.Collection(ctx, tenantID, tenantstore.KindPosts)
}

// List retrieves posts of a post type
func (s *postService) List(ctx context.Context, tenantID, postType string, page, limit int, filter ListPostsFilter) ([]*domain.Post, int64, error) {
	if _, err := s.types.PostTypeFor(ctx, tenantID, postType); err != nil {
		return nil, 0, err
	}
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	storeFilter := tenantstore.Filter{"type": postType}
	if filter.Status != "" {
		storeFilter["status"] = string(filter.Status)
	}
	if filter.Author != "" {
		storeFilter["author_id"] = filter.Author
	}
	if filter.ParentID != "" {
		storeFilter["parent_id"] = filter.ParentID
	}
	total, err := col.Count(ctx, storeFilter)
	if err != nil {
		return nil, 0, err
	}
	docs, err := col.Find(ctx, storeFilter, tenantstore.FindOptions{
		Sort:   []tenantstore.SortField{{Field: "created_at", Desc: true}},
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, err
	}
	posts := make([]*domain.Post, 0, len(docs))
	for _, doc := range docs {
		var post domain.Post
		if err := tenantstore.DecodeDocument(doc, &post); err != nil {
			return nil, 0, err
		}
		materializeSchedule(&post)
		posts = append(posts, &post)
	}
	return posts, total, nil
}

// GetByID retrieves a post by ID
func (s *postService) GetByID(ctx context.Context, tenantID, postType, id string) (*domain.Post, error) {
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, err := col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("post", id)
	}
	var post domain.Post
	if err := tenantstore.DecodeDocument(doc, &post); err != nil {
		return nil, err
	}
	// The password is excluded from the json shape, so it rides the document
	// directly.
	post.Password, _ = doc["password"].(string)
	if post.Type != postType {
		return nil, apperr.NotFound("post", id)
	}
	materializeSchedule(&post)
	return &post, nil
}

// Create creates a post of the given type
func (s *postService) Create(ctx context.Context, actor Principal, tenantID, postType string, input CreatePostInput) (*domain.Post, error) {
	pt, err := s.types.PostTypeFor(ctx, tenantID, postType)
	if err != nil {
		return nil, err
	}
	if input.Title == "" && s.types.Supports(pt, domain.CapTitle) {
		return nil, apperr.Validation("title", "title is required")
	}

	post := domain.Post{
		Type:       postType,
		Title:      input.Title,
		AuthorID:   actor.UserID,
		Visibility: input.Visibility,
		Password:   input.Password,
		Status:     input.Status,
	}
	if post.Visibility == "" {
		post.Visibility = domain.VisibilityPublic
	}
	if post.Status == "" {
		post.Status = domain.StatusDraft
	}
	if !domain.ValidPostStatus(post.Status) {
		return nil, apperr.Validation("status", "unknown status")
	}

	post.Slug = input.Slug
	if post.Slug == "" {
		post.Slug = domain.Slugify(input.Title)
	}
	if !domain.ValidSlug(post.Slug) {
		return nil, apperr.Validation("slug", "slug must be url-safe")
	}

	s.applyCapabilities(pt, &post, input.Content, input.Excerpt, input.FeaturedImageID, input.Fields)

	if input.ParentID != "" {
		if !pt.Hierarchical {
			return nil, apperr.Validation("parent_id", "post type is not hierarchical")
		}
		if _, err := s.GetByID(ctx, tenantID, postType, input.ParentID); err != nil {
			return nil, err
		}
		post.ParentID = input.ParentID
	}

	if err := s.applyStatusTimestamps(&post, input.ScheduledAt); err != nil {
		return nil, err
	}

	terms, err := s.validateTerms(ctx, tenantID, pt, input.Terms)
	if err != nil {
		return nil, err
	}
	post.Terms = terms

	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(post)
	if err != nil {
		return nil, err
	}
	if post.Password != "" {
		doc["password"] = post.Password
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	post.ID = id

	for taxonomy, ids := range post.Terms {
		if err := s.terms.AdjustUsage(ctx, tenantID, taxonomy, ids, nil); err != nil {
			return nil, err
		}
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "post",
		ObjectID:       id,
		ObjectLabel:    post.Title,
	})
	return &post, nil
}

// Update updates a post
func (s *postService) Update(ctx context.Context, actor Principal, tenantID, postType, id string, input UpdatePostInput) (*domain.Post, error) {
	pt, err := s.types.PostTypeFor(ctx, tenantID, postType)
	if err != nil {
		return nil, err
	}
	post, err := s.GetByID(ctx, tenantID, postType, id)
	if err != nil {
		return nil, err
	}

	before, err := tenantstore.EncodeDocument(post)
	if err != nil {
		return nil, err
	}
	oldTerms := post.Terms

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Slug != nil {
		if !domain.ValidSlug(*input.Slug) {
			return nil, apperr.Validation("slug", "slug must be url-safe")
		}
		post.Slug = *input.Slug
	}
	if input.Status != nil {
		if !domain.ValidPostStatus(*input.Status) {
			return nil, apperr.Validation("status", "unknown status")
		}
		post.Status = *input.Status
	}
	if input.Visibility != nil {
		post.Visibility = *input.Visibility
	}
	if input.Password != nil {
		post.Password = *input.Password
	}
	if input.ParentID != nil {
		if *input.ParentID != "" {
			if !pt.Hierarchical {
				return nil, apperr.Validation("parent_id", "post type is not hierarchical")
			}
			if *input.ParentID == id {
				return nil, apperr.Validation("parent_id", "a post cannot be its own parent")
			}
			if _, err := s.GetByID(ctx, tenantID, postType, *input.ParentID); err != nil {
				return nil, err
			}
		}
		post.ParentID = *input.ParentID
	}

	content, excerpt, image := post.Content, post.Excerpt, post.FeaturedImageID
	if input.Content != nil {
		content = *input.Content
	}
	if input.Excerpt != nil {
		excerpt = *input.Excerpt
	}
	if input.FeaturedImageID != nil {
		image = *input.FeaturedImageID
	}
	fields := post.Fields
	if input.Fields != nil {
		fields = input.Fields
	}
	s.applyCapabilities(pt, post, content, excerpt, image, fields)

	if err := s.applyStatusTimestamps(post, input.ScheduledAt); err != nil {
		return nil, err
	}

	if input.Terms != nil {
		terms, err := s.validateTerms(ctx, tenantID, pt, input.Terms)
		if err != nil {
			return nil, err
		}
		post.Terms = terms
	}

	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(post)
	if err != nil {
		return nil, err
	}
	if post.Password != "" {
		doc["password"] = post.Password
	}
	if err := col.Update(ctx, id, doc); err != nil {
		return nil, err
	}
	// The password never reaches the change diff below.
	delete(doc, "password")

	if input.Terms != nil {
		if err := s.adjustTermDiff(ctx, tenantID, oldTerms, post.Terms); err != nil {
			return nil, err
		}
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "post",
		ObjectID:       id,
		ObjectLabel:    post.Title,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return post, nil
}

// Delete permanently removes a post
func (s *postService) Delete(ctx context.Context, actor Principal, tenantID, postType, id string) error {
	post, err := s.GetByID(ctx, tenantID, postType, id)
	if err != nil {
		return err
	}
	col, err := s.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, id); err != nil {
		return err
	}
	for taxonomy, ids := range post.Terms {
		if err := s.terms.AdjustUsage(ctx, tenantID, taxonomy, nil, ids); err != nil {
			return err
		}
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "post",
		ObjectID:       id,
		ObjectLabel:    post.Title,
	})
	return nil
}

// applyCapabilities writes capability-gated fields onto the post, silently
// dropping values for capabilities the post type does not expose.
func (s *postService) applyCapabilities(pt *domain.PostType, post *domain.Post, content, excerpt, imageID string, fields map[string]any) {
	if s.types.Supports(pt, domain.CapEditor) {
		post.Content = content
	} else {
		post.Content = ""
	}
	if s.types.Supports(pt, domain.CapExcerpt) {
		post.Excerpt = excerpt
	} else {
		post.Excerpt = ""
	}
	if s.types.Supports(pt, domain.CapFeaturedImage) {
		post.FeaturedImageID = imageID
	} else {
		post.FeaturedImageID = ""
	}
	if s.types.Supports(pt, domain.CapCustomFields) {
		post.Fields = fields
	} else {
		post.Fields = nil
	}
}

// materializeSchedule presents a scheduled post whose time has arrived as
// published. The stored document is untouched; there is no background worker,
// so the transition happens at read time.
func materializeSchedule(post *domain.Post) {
	if post.Status == domain.StatusScheduled && post.ScheduledAt != nil && !post.ScheduledAt.After(time.Now()) {
		post.Status = domain.StatusPublished
		if post.PublishedAt == nil {
			post.PublishedAt = post.ScheduledAt
		}
	}
}

// applyStatusTimestamps keeps the publish and schedule timestamps consistent
// with the status.
func (s *postService) applyStatusTimestamps(post *domain.Post, scheduledAt *time.Time) error {
	switch post.Status {
	case domain.StatusPublished:
		if post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
		post.ScheduledAt = nil
	case domain.StatusScheduled:
		if scheduledAt != nil {
			post.ScheduledAt = scheduledAt
		}
		if post.ScheduledAt == nil {
			return apperr.Validation("scheduled_at", "a scheduled post needs a schedule time")
		}
		if !post.ScheduledAt.After(time.Now()) {
			return apperr.Validation("scheduled_at", "schedule time must be in the future")
		}
	default:
		if scheduledAt != nil {
			post.ScheduledAt = scheduledAt
		}
	}
	return nil
}

// validateTerms checks every referenced taxonomy is attached to the post
// type and every term id exists in that taxonomy.
func (s *postService) validateTerms(ctx context.Context, tenantID string, pt *domain.PostType, terms map[string][]string) (map[string][]string, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if !s.types.Supports(pt, domain.CapCategories) {
		// Capability gating: the association is dropped, not rejected.
		return nil, nil
	}
	attached := make(map[string]bool, len(pt.Taxonomies))
	for _, name := range pt.Taxonomies {
		attached[name] = true
	}
	out := make(map[string][]string, len(terms))
	for taxonomy, ids := range terms {
		if !attached[taxonomy] {
			return nil, apperr.Validation("terms", "taxonomy is not attached to this post type")
		}
		for _, id := range ids {
			if _, err := s.terms.GetByID(ctx, tenantID, taxonomy, id); err != nil {
				return nil, err
			}
		}
		out[taxonomy] = ids
	}
	return out, nil
}

// adjustTermDiff shifts usage counts for associations that changed.
func (s *postService) adjustTermDiff(ctx context.Context, tenantID string, old, new map[string][]string) error {
	taxonomies := make(map[string]bool)
	for name := range old {
		taxonomies[name] = true
	}
	for name := range new {
		taxonomies[name] = true
	}
	for taxonomy := range taxonomies {
		added, removed := diffIDs(old[taxonomy], new[taxonomy])
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		if err := s.terms.AdjustUsage(ctx, tenantID, taxonomy, added, removed); err != nil {
			return err
		}
	}
	return nil
}

func diffIDs(old, new []string) (added, removed []string) {
	oldSet := make(map[string]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	newSet := make(map[string]bool, len(new))
	for _, id := range new {
		newSet[id] = true
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !newSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
