// Package menu builds navigation trees from flat menu item lists and
// resolves display labels for item references.
package menu

import (
	"context"
	"sort"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// BuildTree arranges a menu's items into a forest. Items are ordered by
// SortOrder ascending with id as the tie-break, at every level. An item
// whose ParentID does not resolve to another item in the same list is
// promoted to a root rather than dropped; a stale parent pointer must not
// hide the item.
func BuildTree(items []domain.MenuItem) []*domain.MenuTreeNode {
	ordered := make([]domain.MenuItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SortOrder != ordered[j].SortOrder {
			return ordered[i].SortOrder < ordered[j].SortOrder
		}
		return ordered[i].ID < ordered[j].ID
	})

	nodes := make(map[string]*domain.MenuTreeNode, len(ordered))
	for _, item := range ordered {
		nodes[item.ID] = &domain.MenuTreeNode{Item: item, Children: []*domain.MenuTreeNode{}}
	}

	roots := make([]*domain.MenuTreeNode, 0, len(ordered))
	for _, item := range ordered {
		node := nodes[item.ID]
		if parent, ok := nodes[item.ParentID]; ok && item.ParentID != item.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// NextOrder returns the default sort order for a new item in the menu.
func NextOrder(items []domain.MenuItem) int {
	max := 0
	for _, item := range items {
		if item.SortOrder > max {
			max = item.SortOrder
		}
	}
	return max + 1
}

// LabelSource looks up display labels for menu item targets. The boolean
// result reports whether the target still exists.
type LabelSource interface {
	PostTitle(ctx context.Context, postID string) (string, bool, error)
	PostTypeLabel(ctx context.Context, name string) (string, bool, error)
	TaxonomyLabel(ctx context.Context, name string) (string, bool, error)
	TermName(ctx context.Context, taxonomy, termID string) (string, bool, error)
}

// ResolveLabels fills in each node's display label from its reference. An
// explicit item label always wins. A reference whose target has been deleted
// resolves to an absent label and marks the node missing; the item still
// renders, so a dangling content reference never fails the build.
func ResolveLabels(ctx context.Context, nodes []*domain.MenuTreeNode, src LabelSource) error {
	for _, node := range nodes {
		if err := resolveNode(ctx, node, src); err != nil {
			return err
		}
		if err := ResolveLabels(ctx, node.Children, src); err != nil {
			return err
		}
	}
	return nil
}

func resolveNode(ctx context.Context, node *domain.MenuTreeNode, src LabelSource) error {
	var (
		label string
		found = true
		err   error
	)
	switch ref := node.Item.Ref.(type) {
	case domain.PostRef:
		label, found, err = src.PostTitle(ctx, ref.PostID)
	case domain.PostTypeRef:
		label, found, err = src.PostTypeLabel(ctx, ref.PostType)
	case domain.TaxonomyRef:
		label, found, err = src.TaxonomyLabel(ctx, ref.Taxonomy)
	case domain.TermRef:
		label, found, err = src.TermName(ctx, ref.Taxonomy, ref.TermID)
	case domain.CustomRef:
		label = ref.Label
		node.URL = ref.URL
	}
	if err != nil {
		return err
	}
	node.Missing = !found
	if node.Item.Label != "" {
		node.Label = node.Item.Label
	} else if found {
		node.Label = label
	}
	return nil
}

// ReorderChange moves one item to a new order and parent.
type ReorderChange struct {
	ID          string `json:"id"`
	NewOrder    int    `json:"new_order"`
	NewParentID string `json:"new_parent_id"`
}

// ReorderFailure records one change that could not be applied.
type ReorderFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ReorderReport summarizes a batch reorder. Changes apply per item, not in a
// transaction; a partial failure leaves the applied items in place and is
// reported here rather than rolled back.
type ReorderReport struct {
	Applied  []string         `json:"applied"`
	Failures []ReorderFailure `json:"failures"`
}

// ApplyReorder runs each change through apply in order and collects the
// outcome.
func ApplyReorder(ctx context.Context, changes []ReorderChange, apply func(context.Context, ReorderChange) error) ReorderReport {
	report := ReorderReport{Applied: []string{}, Failures: []ReorderFailure{}}
	for _, change := range changes {
		if err := apply(ctx, change); err != nil {
			report.Failures = append(report.Failures, ReorderFailure{ID: change.ID, Error: err.Error()})
			continue
		}
		report.Applied = append(report.Applied, change.ID)
	}
	return report
}
