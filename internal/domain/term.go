package domain

import (
	"time"
)

// Term is an instance of a Taxonomy. Slug is unique within its taxonomy.
// ParentID forms a tree when the taxonomy is hierarchical; a term can never
// be its own ancestor, and deletion is blocked while children exist.
type Term struct {
	ID        string         `json:"id"`
	Taxonomy  string         `json:"taxonomy"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	ParentID  string         `json:"parent_id,omitempty"`
	Count     int64          `json:"count"`
	ImageID   string         `json:"image_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
