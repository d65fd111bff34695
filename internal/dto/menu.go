package dto

import (
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/menu"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateMenuRequest represents a request to create a menu
type CreateMenuRequest struct {
	Name     string         `json:"name" binding:"required,min=1,max=255"`
	Slug     string         `json:"slug" binding:"omitempty,max=255"`
	Location string         `json:"location" binding:"omitempty,max=100"`
	Meta     map[string]any `json:"meta"`
}

// UpdateMenuRequest represents a request to update a menu
type UpdateMenuRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=1,max=255"`
	Slug     *string        `json:"slug" binding:"omitempty,max=255"`
	Location *string        `json:"location" binding:"omitempty,max=100"`
	Meta     map[string]any `json:"meta"`
}

// MenuItemRefRequest carries a menu item target. Exactly one variant applies,
// discriminated by Kind.
type MenuItemRefRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=post post_type taxonomy term custom"`
	PostID   string `json:"post_id"`
	PostType string `json:"post_type"`
	Taxonomy string `json:"taxonomy"`
	TermID   string `json:"term_id"`
	URL      string `json:"url"`
	Label    string `json:"label"`
}

// ToRef converts the request shape into the domain reference variant.
func (r *MenuItemRefRequest) ToRef() (domain.MenuItemRef, error) {
	switch r.Kind {
	case domain.RefPost:
		if r.PostID == "" {
			return nil, apperr.Validation("ref.post_id", "post_id is required for a post reference")
		}
		return domain.PostRef{PostID: r.PostID}, nil
	case domain.RefPostType:
		if r.PostType == "" {
			return nil, apperr.Validation("ref.post_type", "post_type is required for a post type reference")
		}
		return domain.PostTypeRef{PostType: r.PostType}, nil
	case domain.RefTaxonomy:
		if r.Taxonomy == "" {
			return nil, apperr.Validation("ref.taxonomy", "taxonomy is required for a taxonomy reference")
		}
		return domain.TaxonomyRef{Taxonomy: r.Taxonomy}, nil
	case domain.RefTerm:
		if r.Taxonomy == "" || r.TermID == "" {
			return nil, apperr.Validation("ref.term_id", "taxonomy and term_id are required for a term reference")
		}
		return domain.TermRef{Taxonomy: r.Taxonomy, TermID: r.TermID}, nil
	case domain.RefCustom:
		if r.URL == "" {
			return nil, apperr.Validation("ref.url", "url is required for a custom reference")
		}
		return domain.CustomRef{URL: r.URL, Label: r.Label}, nil
	}
	return nil, apperr.Validation("ref.kind", "unknown reference kind")
}

// CreateMenuItemRequest represents a request to add a menu item. An omitted
// sort_order appends after the last sibling; zero is a valid position.
type CreateMenuItemRequest struct {
	ParentID  string              `json:"parent_id"`
	SortOrder *int                `json:"sort_order" binding:"omitempty,min=0"`
	Label     string              `json:"label" binding:"omitempty,max=255"`
	Ref       *MenuItemRefRequest `json:"ref" binding:"required"`
	Target    string              `json:"target" binding:"omitempty,max=30"`
	CSSClass  string              `json:"css_class" binding:"omitempty,max=255"`
	Meta      map[string]any      `json:"meta"`
}

// UpdateMenuItemRequest represents a request to update a menu item
type UpdateMenuItemRequest struct {
	ParentID  *string             `json:"parent_id"`
	SortOrder *int                `json:"sort_order" binding:"omitempty,min=0"`
	Label     *string             `json:"label" binding:"omitempty,max=255"`
	Ref       *MenuItemRefRequest `json:"ref"`
	Target    *string             `json:"target" binding:"omitempty,max=30"`
	CSSClass  *string             `json:"css_class" binding:"omitempty,max=255"`
	Meta      map[string]any      `json:"meta"`
}

// ReorderMenuRequest represents a batch of order and parent changes
type ReorderMenuRequest struct {
	Changes []menu.ReorderChange `json:"changes" binding:"required,min=1"`
}

// MenuItemResponse represents a menu item with its reference flattened
type MenuItemResponse struct {
	ID        string         `json:"id"`
	MenuID    string         `json:"menu_id"`
	ParentID  string         `json:"parent_id,omitempty"`
	SortOrder int            `json:"sort_order"`
	Label     string         `json:"label,omitempty"`
	Ref       MenuItemRefDTO `json:"ref"`
	Target    string         `json:"target,omitempty"`
	CSSClass  string         `json:"css_class,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// MenuItemRefDTO is the serialized reference variant.
type MenuItemRefDTO struct {
	Kind     string `json:"kind"`
	PostID   string `json:"post_id,omitempty"`
	PostType string `json:"post_type,omitempty"`
	Taxonomy string `json:"taxonomy,omitempty"`
	TermID   string `json:"term_id,omitempty"`
	URL      string `json:"url,omitempty"`
	Label    string `json:"label,omitempty"`
}

// NewMenuItemRefDTO maps a domain reference to its serialized shape
func NewMenuItemRefDTO(ref domain.MenuItemRef) MenuItemRefDTO {
	out := MenuItemRefDTO{Kind: domain.RefKind(ref)}
	switch v := ref.(type) {
	case domain.PostRef:
		out.PostID = v.PostID
	case domain.PostTypeRef:
		out.PostType = v.PostType
	case domain.TaxonomyRef:
		out.Taxonomy = v.Taxonomy
	case domain.TermRef:
		out.Taxonomy = v.Taxonomy
		out.TermID = v.TermID
	case domain.CustomRef:
		out.URL = v.URL
		out.Label = v.Label
	}
	return out
}

// NewMenuItemResponse maps a domain menu item to the response shape
func NewMenuItemResponse(item domain.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:        item.ID,
		MenuID:    item.MenuID,
		ParentID:  item.ParentID,
		SortOrder: item.SortOrder,
		Label:     item.Label,
		Ref:       NewMenuItemRefDTO(item.Ref),
		Target:    item.Target,
		CSSClass:  item.CSSClass,
		Meta:      item.Meta,
	}
}

// NewMenuItemResponses maps a list of domain menu items
func NewMenuItemResponses(items []domain.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewMenuItemResponse(item))
	}
	return out
}

// MenuTreeNodeResponse is one node of the rendered navigation tree
type MenuTreeNodeResponse struct {
	Item     MenuItemResponse       `json:"item"`
	Label    string                 `json:"label"`
	URL      string                 `json:"url,omitempty"`
	Missing  bool                   `json:"missing,omitempty"`
	Children []MenuTreeNodeResponse `json:"children"`
}

// NewMenuTreeResponse maps a resolved tree to the response shape
func NewMenuTreeResponse(nodes []*domain.MenuTreeNode) []MenuTreeNodeResponse {
	out := make([]MenuTreeNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, MenuTreeNodeResponse{
			Item:     NewMenuItemResponse(node.Item),
			Label:    node.Label,
			URL:      node.URL,
			Missing:  node.Missing,
			Children: NewMenuTreeResponse(node.Children),
		})
	}
	return out
}
