package dto

import (
	"strings"
	"time"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// CreatePostRequest represents a request to create a post. Fields whose
// capability the post type does not support are dropped, not rejected.
type CreatePostRequest struct {
	Title           string                `json:"title" binding:"omitempty,max=255"`
	Slug            string                `json:"slug" binding:"omitempty,max=255"`
	Content         string                `json:"content"`
	Excerpt         string                `json:"excerpt"`
	Status          domain.PostStatus     `json:"status"`
	ParentID        string                `json:"parent_id"`
	Visibility      domain.PostVisibility `json:"visibility"`
	Password        string                `json:"password"`
	FeaturedImageID string                `json:"featured_image_id"`
	Fields          map[string]any        `json:"fields"`
	Terms           map[string][]string   `json:"terms"`
	ScheduledAt     *time.Time            `json:"scheduled_at"`
}

// UpdatePostRequest represents a request to update a post
type UpdatePostRequest struct {
	Title           *string                `json:"title" binding:"omitempty,max=255"`
	Slug            *string                `json:"slug" binding:"omitempty,max=255"`
	Content         *string                `json:"content"`
	Excerpt         *string                `json:"excerpt"`
	Status          *domain.PostStatus     `json:"status"`
	ParentID        *string                `json:"parent_id"`
	Visibility      *domain.PostVisibility `json:"visibility"`
	Password        *string                `json:"password"`
	FeaturedImageID *string                `json:"featured_image_id"`
	Fields          map[string]any         `json:"fields"`
	Terms           map[string][]string    `json:"terms"`
	ScheduledAt     *time.Time             `json:"scheduled_at"`
}

// ListPostsQuery represents query parameters for listing posts
type ListPostsQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status  string `form:"status" binding:"omitempty"`
	Author  string `form:"author" binding:"omitempty"`
	Include string `form:"include" binding:"omitempty"`
}

// SetDefaults sets default values for query parameters
func (q *ListPostsQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// PostResponse decorates a post with the expansions requested through the
// include query parameter. An expansion the caller did not ask for is never
// computed and never serialized.
type PostResponse struct {
	*domain.Post
	Author     *UserResponse             `json:"author,omitempty"`
	Categories map[string][]*domain.Term `json:"categories,omitempty"`
	Children   []*domain.Post            `json:"children,omitempty"`
}

// ParseInclude splits a comma-separated include parameter into a lookup set.
func ParseInclude(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out[part] = true
		}
	}
	return out
}
