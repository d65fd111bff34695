package domain

import (
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPending   PostStatus = "pending"
	StatusPublished PostStatus = "published"
	StatusScheduled PostStatus = "scheduled"
	StatusPrivate   PostStatus = "private"
	StatusTrash     PostStatus = "trash"
)

// ValidPostStatus reports whether s is a known status.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusScheduled, StatusPrivate, StatusTrash:
		return true
	}
	return false
}

// PostVisibility gates who can read a published post.
type PostVisibility string

const (
	VisibilityPublic   PostVisibility = "public"
	VisibilityPrivate  PostVisibility = "private"
	VisibilityPassword PostVisibility = "password"
)

// Post is an instance of a PostType. Slug is unique per (tenant, post type).
// Term associations are keyed by taxonomy name.
type Post struct {
	ID              string              `json:"id"`
	Type            string              `json:"type"`
	Title           string              `json:"title"`
	Slug            string              `json:"slug"`
	Content         string              `json:"content,omitempty"`
	Excerpt         string              `json:"excerpt,omitempty"`
	Status          PostStatus          `json:"status"`
	AuthorID        string              `json:"author_id"`
	ParentID        string              `json:"parent_id,omitempty"`
	Visibility      PostVisibility      `json:"visibility"`
	Password        string              `json:"-"`
	FeaturedImageID string              `json:"featured_image_id,omitempty"`
	Fields          map[string]any      `json:"fields,omitempty"`
	Terms           map[string][]string `json:"terms,omitempty"`
	PublishedAt     *time.Time          `json:"published_at,omitempty"`
	ScheduledAt     *time.Time          `json:"scheduled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
