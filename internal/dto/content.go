package dto

import (
	"github.com/grandslambert/backend-cms/internal/domain"
)

// CreatePostTypeRequest represents a request to register a custom post type
type CreatePostTypeRequest struct {
	Name         string                     `json:"name" binding:"required,min=2,max=60"`
	Labels       domain.Labels              `json:"labels" binding:"required"`
	Hierarchical bool                       `json:"hierarchical"`
	Supports     map[domain.Capability]bool `json:"supports"`
	Taxonomies   []string                   `json:"taxonomies"`
	ShowInMenu   bool                       `json:"show_in_menu"`
	MenuPosition int                        `json:"menu_position" binding:"omitempty,min=0"`
}

// UpdatePostTypeRequest represents a request to update a post type
type UpdatePostTypeRequest struct {
	Name         *string                    `json:"name" binding:"omitempty,min=2,max=60"`
	Labels       *domain.Labels             `json:"labels"`
	Supports     map[domain.Capability]bool `json:"supports"`
	Taxonomies   []string                   `json:"taxonomies"`
	ShowInMenu   *bool                      `json:"show_in_menu"`
	MenuPosition *int                       `json:"menu_position" binding:"omitempty,min=0"`
}

// CreateTaxonomyRequest represents a request to register a custom taxonomy
type CreateTaxonomyRequest struct {
	Name         string        `json:"name" binding:"required,min=2,max=60"`
	Labels       domain.Labels `json:"labels" binding:"required"`
	Hierarchical bool          `json:"hierarchical"`
	PostTypes    []string      `json:"post_types"`
}

// UpdateTaxonomyRequest represents a request to update a taxonomy
type UpdateTaxonomyRequest struct {
	Name      *string        `json:"name" binding:"omitempty,min=2,max=60"`
	Labels    *domain.Labels `json:"labels"`
	PostTypes []string       `json:"post_types"`
}

// CreateTermRequest represents a request to create a term
type CreateTermRequest struct {
	Name     string         `json:"name" binding:"required,min=1,max=255"`
	Slug     string         `json:"slug" binding:"omitempty,max=255"`
	ParentID string         `json:"parent_id"`
	ImageID  string         `json:"image_id"`
	Meta     map[string]any `json:"meta"`
}

// ListTermsQuery represents query parameters for listing terms
type ListTermsQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SetDefaults sets default values for query parameters
func (q *ListTermsQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
}

// UpdateTermRequest represents a request to update a term
type UpdateTermRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=1,max=255"`
	Slug     *string        `json:"slug" binding:"omitempty,max=255"`
	ParentID *string        `json:"parent_id"`
	ImageID  *string        `json:"image_id"`
	Meta     map[string]any `json:"meta"`
}
