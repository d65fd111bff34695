package service

import (
	"context"
	"errors"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/menu"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateMenuInput carries the fields for a new menu.
type CreateMenuInput struct {
	Name     string
	Slug     string
	Location string
	Meta     map[string]any
}

// UpdateMenuInput carries optional field updates for a menu.
type UpdateMenuInput struct {
	Name     *string
	Slug     *string
	Location *string
	Meta     map[string]any
}

// CreateMenuItemInput carries the fields for a new menu item. A nil
// SortOrder means append after the current last sibling; zero is a valid
// explicit position.
type CreateMenuItemInput struct {
	ParentID  string
	SortOrder *int
	Label     string
	Ref       domain.MenuItemRef
	Target    string
	CSSClass  string
	Meta      map[string]any
}

// UpdateMenuItemInput carries optional field updates for a menu item.
type UpdateMenuItemInput struct {
	ParentID  *string
	SortOrder *int
	Label     *string
	Ref       domain.MenuItemRef
	Target    *string
	CSSClass  *string
	Meta      map[string]any
}

// MenuService defines the interface for menu and menu item management
type MenuService interface {
	// List retrieves all menus of a tenant
	List(ctx context.Context, tenantID string) ([]*domain.Menu, error)
	// GetByID retrieves a menu by ID
	GetByID(ctx context.Context, tenantID, id string) (*domain.Menu, error)
	// Create creates a menu
	Create(ctx context.Context, actor Principal, tenantID string, input CreateMenuInput) (*domain.Menu, error)
	// Update updates a menu
	Update(ctx context.Context, actor Principal, tenantID, id string, input UpdateMenuInput) (*domain.Menu, error)
	// Delete removes a menu and all of its items
	Delete(ctx context.Context, actor Principal, tenantID, id string) error

	// ListItems retrieves a menu's items as a flat, ordered list
	ListItems(ctx context.Context, tenantID, menuID string) ([]domain.MenuItem, error)
	// AddItem appends an item to a menu
	AddItem(ctx context.Context, actor Principal, tenantID, menuID string, input CreateMenuItemInput) (*domain.MenuItem, error)
	// UpdateItem updates a menu item
	UpdateItem(ctx context.Context, actor Principal, tenantID, menuID, itemID string, input UpdateMenuItemInput) (*domain.MenuItem, error)
	// DeleteItem removes a menu item; blocked while children exist
	DeleteItem(ctx context.Context, actor Principal, tenantID, menuID, itemID string) error
	// Tree builds the menu's hierarchy with resolved labels
	Tree(ctx context.Context, tenantID, menuID string) ([]*domain.MenuTreeNode, error)
	// Reorder applies a batch of order and parent changes item by item
	Reorder(ctx context.Context, actor Principal, tenantID, menuID string, changes []menu.ReorderChange) (menu.ReorderReport, error)
}

type menuService struct {
	stores  *tenantstore.Registry
	types   *contenttype.Registry
	auditor *audit.Logger
}

// NewMenuService creates a new MenuService
func NewMenuService(stores *tenantstore.Registry, types *contenttype.Registry, auditor *audit.Logger) MenuService {
	return &menuService{stores: stores, types: types, auditor: auditor}
}

// List retrieves all menus of a tenant
func (s *menuService) List(ctx context.Context, tenantID string) ([]*domain.Menu, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenus)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, nil, tenantstore.FindOptions{
		Sort: []tenantstore.SortField{{Field: "name"}},
	})
	if err != nil {
		return nil, err
	}
	menus := make([]*domain.Menu, 0, len(docs))
	for _, doc := range docs {
		var m domain.Menu
		if err := tenantstore.DecodeDocument(doc, &m); err != nil {
			return nil, err
		}
		menus = append(menus, &m)
	}
	return menus, nil
}

// GetByID retrieves a menu by ID
func (s *menuService) GetByID(ctx context.Context, tenantID, id string) (*domain.Menu, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenus)
	if err != nil {
		return nil, err
	}
	doc, err := col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("menu", id)
	}
	var m domain.Menu
	if err := tenantstore.DecodeDocument(doc, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create creates a menu
func (s *menuService) Create(ctx context.Context, actor Principal, tenantID string, input CreateMenuInput) (*domain.Menu, error) {
	if input.Name == "" {
		return nil, apperr.Validation("name", "name is required")
	}
	slug := input.Slug
	if slug == "" {
		slug = domain.Slugify(input.Name)
	}
	if !domain.ValidSlug(slug) {
		return nil, apperr.Validation("slug", "slug must be url-safe")
	}

	m := domain.Menu{
		Name:     input.Name,
		Slug:     slug,
		Location: input.Location,
		Meta:     input.Meta,
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenus)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(m)
	if err != nil {
		return nil, err
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	m.ID = id

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "menu",
		ObjectID:       id,
		ObjectLabel:    m.Name,
	})
	return &m, nil
}

// Update updates a menu
func (s *menuService) Update(ctx context.Context, actor Principal, tenantID, id string, input UpdateMenuInput) (*domain.Menu, error) {
	m, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	before, err := tenantstore.EncodeDocument(m)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperr.Validation("name", "name is required")
		}
		m.Name = *input.Name
	}
	if input.Slug != nil {
		if !domain.ValidSlug(*input.Slug) {
			return nil, apperr.Validation("slug", "slug must be url-safe")
		}
		m.Slug = *input.Slug
	}
	if input.Location != nil {
		m.Location = *input.Location
	}
	if input.Meta != nil {
		m.Meta = input.Meta
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenus)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(m)
	if err != nil {
		return nil, err
	}
	if err := col.Update(ctx, id, doc); err != nil {
		return nil, err
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "menu",
		ObjectID:       id,
		ObjectLabel:    m.Name,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return m, nil
}

// Delete removes a menu and all of its items
func (s *menuService) Delete(ctx context.Context, actor Principal, tenantID, id string) error {
	m, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	items, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenuItems)
	if err != nil {
		return err
	}
	docs, err := items.Find(ctx, tenantstore.Filter{"menu_id": id}, tenantstore.FindOptions{})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		itemID, _ := doc["id"].(string)
		if err := items.Delete(ctx, itemID); err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenus)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "menu",
		ObjectID:       id,
		ObjectLabel:    m.Name,
	})
	return nil
}

// ListItems retrieves a menu's items as a flat, ordered list
func (s *menuService) ListItems(ctx context.Context, tenantID, menuID string) ([]domain.MenuItem, error) {
	if _, err := s.GetByID(ctx, tenantID, menuID); err != nil {
		return nil, err
	}
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenuItems)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, tenantstore.Filter{"menu_id": menuID}, tenantstore.FindOptions{
		Sort: []tenantstore.SortField{{Field: "sort_order"}},
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.MenuItem, 0, len(docs))
	for _, doc := range docs {
		item, err := decodeMenuItem(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// AddItem appends an item to a menu
func (s *menuService) AddItem(ctx context.Context, actor Principal, tenantID, menuID string, input CreateMenuItemInput) (*domain.MenuItem, error) {
	if input.Ref == nil {
		return nil, apperr.Validation("ref", "a menu item needs a target")
	}
	items, err := s.ListItems(ctx, tenantID, menuID)
	if err != nil {
		return nil, err
	}
	if input.ParentID != "" {
		if err := s.checkItemParent(items, menuID, "", input.ParentID); err != nil {
			return nil, err
		}
	}

	item := domain.MenuItem{
		MenuID:    menuID,
		ParentID:  input.ParentID,
		SortOrder: menu.NextOrder(items),
		Label:     input.Label,
		Ref:       input.Ref,
		Target:    input.Target,
		CSSClass:  input.CSSClass,
		Meta:      input.Meta,
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenuItems)
	if err != nil {
		return nil, err
	}
	doc, err := encodeMenuItem(item)
	if err != nil {
		return nil, err
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	item.ID = id

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "menu_item",
		ObjectID:       id,
		ObjectLabel:    item.Label,
	})
	return &item, nil
}

// UpdateItem updates a menu item
func (s *menuService) UpdateItem(ctx context.Context, actor Principal, tenantID, menuID, itemID string, input UpdateMenuItemInput) (*domain.MenuItem, error) {
	item, err := s.getItem(ctx, tenantID, menuID, itemID)
	if err != nil {
		return nil, err
	}

	before, err := encodeMenuItem(*item)
	if err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if *input.ParentID != "" {
			items, err := s.ListItems(ctx, tenantID, menuID)
			if err != nil {
				return nil, err
			}
			if err := s.checkItemParent(items, menuID, itemID, *input.ParentID); err != nil {
				return nil, err
			}
		}
		item.ParentID = *input.ParentID
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	if input.Label != nil {
		item.Label = *input.Label
	}
	if input.Ref != nil {
		item.Ref = input.Ref
	}
	if input.Target != nil {
		item.Target = *input.Target
	}
	if input.CSSClass != nil {
		item.CSSClass = *input.CSSClass
	}
	if input.Meta != nil {
		item.Meta = input.Meta
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenuItems)
	if err != nil {
		return nil, err
	}
	doc, err := encodeMenuItem(*item)
	if err != nil {
		return nil, err
	}
	if err := col.Update(ctx, itemID, doc); err != nil {
		return nil, err
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "menu_item",
		ObjectID:       itemID,
		ObjectLabel:    item.Label,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return item, nil
}

// DeleteItem removes a menu item; blocked while children exist
func (s *menuService) DeleteItem(ctx context.Context, actor Principal, tenantID, menuID, itemID string) error {
	item, err := s.getItem(ctx, tenantID, menuID, itemID)
	if err != nil {
		return err
	}
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenuItems)
	if err != nil {
		return err
	}
	err = col.DeleteGuarded(ctx, itemID, tenantstore.Guard{
		Kind:   tenantstore.KindMenuItems,
		Filter: tenantstore.Filter{"menu_id": menuID, "parent_id": itemID},
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "menu_item",
		ObjectID:       itemID,
		ObjectLabel:    item.Label,
	})
	return nil
}

// Tree builds the menu's hierarchy with resolved labels
func (s *menuService) Tree(ctx context.Context, tenantID, menuID string) ([]*domain.MenuTreeNode, error) {
	items, err := s.ListItems(ctx, tenantID, menuID)
	if err != nil {
		return nil, err
	}
	nodes := menu.BuildTree(items)
	src := &storeLabelSource{stores: s.stores, types: s.types, tenantID: tenantID}
	if err := menu.ResolveLabels(ctx, nodes, src); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Reorder applies a batch of order and parent changes item by item
func (s *menuService) Reorder(ctx context.Context, actor Principal, tenantID, menuID string, changes []menu.ReorderChange) (menu.ReorderReport, error) {
	if _, err := s.GetByID(ctx, tenantID, menuID); err != nil {
		return menu.ReorderReport{}, err
	}
	report := menu.ApplyReorder(ctx, changes, func(ctx context.Context, change menu.ReorderChange) error {
		_, err := s.UpdateItem(ctx, actor, tenantID, menuID, change.ID, UpdateMenuItemInput{
			ParentID:  &change.NewParentID,
			SortOrder: &change.NewOrder,
		})
		return err
	})
	return report, nil
}

func (s *menuService) getItem(ctx context.Context, tenantID, menuID, itemID string) (*domain.MenuItem, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMenuItems)
	if err != nil {
		return nil, err
	}
	doc, err := col.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("menu item", itemID)
	}
	item, err := decodeMenuItem(doc)
	if err != nil {
		return nil, err
	}
	if item.MenuID != menuID {
		return nil, apperr.NotFound("menu item", itemID)
	}
	return item, nil
}

// checkItemParent verifies the proposed parent lives in the same menu and
// would not make the item its own ancestor.
func (s *menuService) checkItemParent(items []domain.MenuItem, menuID, itemID, parentID string) error {
	if parentID == itemID {
		return apperr.Validation("parent_id", "an item cannot be its own parent")
	}
	byID := make(map[string]domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	if _, ok := byID[parentID]; !ok {
		return apperr.NotFound("menu item", parentID)
	}
	seen := map[string]bool{itemID: true}
	current := parentID
	for current != "" {
		if seen[current] {
			return apperr.Validation("parent_id", "an item cannot be its own ancestor")
		}
		seen[current] = true
		current = byID[current].ParentID
	}
	return nil
}

// encodeMenuItem flattens the item and its reference into one document. The
// reference variant is discriminated by ref_kind.
func encodeMenuItem(item domain.MenuItem) (tenantstore.Document, error) {
	doc, err := tenantstore.EncodeDocument(item)
	if err != nil {
		return nil, err
	}
	doc["ref_kind"] = domain.RefKind(item.Ref)
	switch ref := item.Ref.(type) {
	case domain.PostRef:
		doc["ref_post_id"] = ref.PostID
	case domain.PostTypeRef:
		doc["ref_post_type"] = ref.PostType
	case domain.TaxonomyRef:
		doc["ref_taxonomy"] = ref.Taxonomy
	case domain.TermRef:
		doc["ref_taxonomy"] = ref.Taxonomy
		doc["ref_term_id"] = ref.TermID
	case domain.CustomRef:
		doc["ref_url"] = ref.URL
		doc["ref_label"] = ref.Label
	}
	return doc, nil
}

func decodeMenuItem(doc tenantstore.Document) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := tenantstore.DecodeDocument(doc, &item); err != nil {
		return nil, err
	}
	str := func(key string) string {
		v, _ := doc[key].(string)
		return v
	}
	switch str("ref_kind") {
	case domain.RefPost:
		item.Ref = domain.PostRef{PostID: str("ref_post_id")}
	case domain.RefPostType:
		item.Ref = domain.PostTypeRef{PostType: str("ref_post_type")}
	case domain.RefTaxonomy:
		item.Ref = domain.TaxonomyRef{Taxonomy: str("ref_taxonomy")}
	case domain.RefTerm:
		item.Ref = domain.TermRef{Taxonomy: str("ref_taxonomy"), TermID: str("ref_term_id")}
	case domain.RefCustom:
		item.Ref = domain.CustomRef{URL: str("ref_url"), Label: str("ref_label")}
	case "":
		return nil, errors.New("menu item document has no reference kind")
	}
	return &item, nil
}

// storeLabelSource resolves menu item labels from the tenant's content. A
// deleted target reports found=false instead of an error.
type storeLabelSource struct {
	stores   *tenantstore.Registry
	types    *contenttype.Registry
	tenantID string
}

func (s *storeLabelSource) PostTitle(ctx context.Context, postID string) (string, bool, error) {
	col, err := s.stores.Collection(ctx, s.tenantID, tenantstore.KindPosts)
	if err != nil {
		return "", false, err
	}
	doc, err := col.Get(ctx, postID)
	if err != nil {
		return "", false, err
	}
	if doc == nil {
		return "", false, nil
	}
	title, _ := doc["title"].(string)
	return title, true, nil
}

func (s *storeLabelSource) PostTypeLabel(ctx context.Context, name string) (string, bool, error) {
	pt, err := s.types.PostTypeFor(ctx, s.tenantID, name)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return pt.Labels.Plural, true, nil
}

func (s *storeLabelSource) TaxonomyLabel(ctx context.Context, name string) (string, bool, error) {
	tx, err := s.types.TaxonomyFor(ctx, s.tenantID, name)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return tx.Labels.Plural, true, nil
}

func (s *storeLabelSource) TermName(ctx context.Context, taxonomy, termID string) (string, bool, error) {
	col, err := s.stores.Collection(ctx, s.tenantID, tenantstore.KindTerms)
	if err != nil {
		return "", false, err
	}
	doc, err := col.Get(ctx, termID)
	if err != nil {
		return "", false, err
	}
	if doc == nil {
		return "", false, nil
	}
	if stored, _ := doc["taxonomy"].(string); stored != taxonomy {
		return "", false, nil
	}
	name, _ := doc["name"].(string)
	return name, true, nil
}
