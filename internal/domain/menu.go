package domain

import (
	"time"
)

// Menu is a named navigation container, optionally assigned to a theme
// location. Location is unique per tenant.
type Menu struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Location  string         `json:"location,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// MenuItemRef is what a menu item points at. The variants form a closed set:
// a concrete post, a post type archive, a taxonomy archive, a single term, or
// a custom URL. Resolution of the display label depends on the variant.
type MenuItemRef interface {
	refKind() string
}

// PostRef points at a single post.
type PostRef struct {
	PostID string `json:"post_id"`
}

// PostTypeRef points at a post type archive.
type PostTypeRef struct {
	PostType string `json:"post_type"`
}

// TaxonomyRef points at a taxonomy archive.
type TaxonomyRef struct {
	Taxonomy string `json:"taxonomy"`
}

// TermRef points at a single term.
type TermRef struct {
	Taxonomy string `json:"taxonomy"`
	TermID   string `json:"term_id"`
}

// CustomRef carries a free-form URL and its own label.
type CustomRef struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

func (PostRef) refKind() string     { return RefPost }
func (PostTypeRef) refKind() string { return RefPostType }
func (TaxonomyRef) refKind() string { return RefTaxonomy }
func (TermRef) refKind() string     { return RefTerm }
func (CustomRef) refKind() string   { return RefCustom }

// Menu item reference kinds as stored on the item document.
const (
	RefPost     = "post"
	RefPostType = "post_type"
	RefTaxonomy = "taxonomy"
	RefTerm     = "term"
	RefCustom   = "custom"
)

// RefKind returns the stored kind discriminator for a reference.
func RefKind(ref MenuItemRef) string {
	if ref == nil {
		return ""
	}
	return ref.refKind()
}

// MenuItem is a node in a menu. ParentID is empty for roots; SortOrder
// orders siblings. Label overrides the resolved target label when set.
type MenuItem struct {
	ID        string         `json:"id"`
	MenuID    string         `json:"menu_id"`
	ParentID  string         `json:"parent_id,omitempty"`
	SortOrder int            `json:"sort_order"`
	Label     string         `json:"label,omitempty"`
	Ref       MenuItemRef    `json:"-"`
	Target    string         `json:"target,omitempty"` // e.g. _blank
	CSSClass  string         `json:"css_class,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// MenuTreeNode is a menu item with its resolved label and ordered children,
// as returned by the hierarchy builder.
type MenuTreeNode struct {
	Item     MenuItem        `json:"item"`
	Label    string          `json:"label"`
	URL      string          `json:"url,omitempty"`
	Missing  bool            `json:"missing,omitempty"` // target no longer exists
	Children []*MenuTreeNode `json:"children"`
}
