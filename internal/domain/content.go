package domain

import (
	"time"
)

// Capability names the optional features a post type can support. A route
// handler silently drops payload fields whose capability the post type does
// not expose.
type Capability string

const (
	CapTitle         Capability = "title"
	CapEditor        Capability = "editor" // body content
	CapExcerpt       Capability = "excerpt"
	CapFeaturedImage Capability = "featured_image"
	CapCustomFields  Capability = "custom_fields"
	CapCategories    Capability = "categories"
)

// Built-in content type names. Their name cannot change and they cannot be
// deleted.
const (
	PostTypePost = "post"
	PostTypePage = "page"

	TaxonomyCategory = "category"
	TaxonomyTag      = "tag"
)

// Labels holds the display strings for a post type or taxonomy.
type Labels struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
	MenuName string `json:"menu_name,omitempty"`
}

// PostType is a tenant-scoped content shape definition.
type PostType struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Labels       Labels              `json:"labels"`
	Hierarchical bool                `json:"hierarchical"`
	Supports     map[Capability]bool `json:"supports"`
	Taxonomies   []string            `json:"taxonomies,omitempty"`
	ShowInMenu   bool                `json:"show_in_menu"`
	MenuPosition int                 `json:"menu_position,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// IsBuiltIn reports whether the post type is one of the protected built-ins.
func (pt *PostType) IsBuiltIn() bool {
	return pt.Name == PostTypePost || pt.Name == PostTypePage
}

// Taxonomy is a tenant-scoped classification definition.
type Taxonomy struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Labels       Labels    `json:"labels"`
	Hierarchical bool      `json:"hierarchical"` // category-like vs tag-like
	PostTypes    []string  `json:"post_types,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsBuiltIn reports whether the taxonomy is one of the protected built-ins.
func (tx *Taxonomy) IsBuiltIn() bool {
	return tx.Name == TaxonomyCategory || tx.Name == TaxonomyTag
}

// DefaultPostTypes returns the built-in post types every tenant starts with.
func DefaultPostTypes() []PostType {
	now := time.Now()
	return []PostType{
		{
			Name:         PostTypePost,
			Labels:       Labels{Singular: "Post", Plural: "Posts"},
			Hierarchical: false,
			Supports: map[Capability]bool{
				CapTitle: true, CapEditor: true, CapExcerpt: true,
				CapFeaturedImage: true, CapCustomFields: true, CapCategories: true,
			},
			Taxonomies: []string{TaxonomyCategory, TaxonomyTag},
			ShowInMenu: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			Name:         PostTypePage,
			Labels:       Labels{Singular: "Page", Plural: "Pages"},
			Hierarchical: true,
			Supports: map[Capability]bool{
				CapTitle: true, CapEditor: true, CapFeaturedImage: true,
				CapCustomFields: true,
			},
			ShowInMenu: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

// DefaultTaxonomies returns the built-in taxonomies every tenant starts with.
func DefaultTaxonomies() []Taxonomy {
	now := time.Now()
	return []Taxonomy{
		{
			Name:         TaxonomyCategory,
			Labels:       Labels{Singular: "Category", Plural: "Categories"},
			Hierarchical: true,
			PostTypes:    []string{PostTypePost},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			Name:         TaxonomyTag,
			Labels:       Labels{Singular: "Tag", Plural: "Tags"},
			Hierarchical: false,
			PostTypes:    []string{PostTypePost},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}
