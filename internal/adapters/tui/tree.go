// Package tui is an interactive terminal browser over the structure
// catalog. Tree levels are loaded lazily through the store's children
// query, mirroring how frontends consume the adapter.
package tui

import (
	"github.com/google/uuid"

	"structura/internal/domain"
)

// EntityKind tags a tree entry with what it represents.
type EntityKind int

const (
	KindThingNode EntityKind = iota
	KindSource
	KindSink
)

// TreeNode is one displayable entry of the browser tree.
type TreeNode struct {
	Kind       EntityKind
	ID         uuid.UUID
	ExternalID string
	Name       string
	Type       string

	Parent     *TreeNode
	Children   []*TreeNode
	IsExpanded bool
	IsLoaded   bool
}

// Expandable reports whether the entry can hold children. Sources and
// sinks are always leaves.
func (n *TreeNode) Expandable() bool {
	return n.Kind == KindThingNode
}

// Depth returns the nesting level, with top-level nodes at zero.
func (n *TreeNode) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// SetLevel replaces the node's children with a freshly loaded level.
func (n *TreeNode) SetLevel(level *domain.StructureLevel) {
	n.Children = nil
	for _, tn := range level.ThingNodes {
		n.Children = append(n.Children, &TreeNode{
			Kind:       KindThingNode,
			ID:         tn.ID,
			ExternalID: tn.ExternalID,
			Name:       tn.Name,
			Parent:     n,
		})
	}
	for _, src := range level.Sources {
		n.Children = append(n.Children, &TreeNode{
			Kind:       KindSource,
			ID:         src.ID,
			ExternalID: src.ExternalID,
			Name:       src.Name,
			Type:       src.Type,
			Parent:     n,
		})
	}
	for _, snk := range level.Sinks {
		n.Children = append(n.Children, &TreeNode{
			Kind:       KindSink,
			ID:         snk.ID,
			ExternalID: snk.ExternalID,
			Name:       snk.Name,
			Type:       snk.Type,
			Parent:     n,
		})
	}
	n.IsLoaded = true
}

// flatten appends the visible entries of the subtree in display order.
func (n *TreeNode) flatten(out []*TreeNode) []*TreeNode {
	out = append(out, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			out = child.flatten(out)
		}
	}
	return out
}
