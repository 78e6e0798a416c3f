package domain

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

// SortThingNodes orders thing nodes into a flat, level-ordered list in
// which every node appears after its parent, so writes can proceed in
// slice order without deferred foreign key checks.
//
// Nodes whose natural key matches an entry of existingIDs adopt that
// surrogate id; the parent→children adjacency is then built from the
// parent references, scoped by stakeholder key. A node whose declared
// parent resolves to nothing is an orphan: it is logged and excluded
// from the result entirely, neither written nor linked. The traversal is
// breadth-first, with each node's children sorted lexicographically by
// external id before the next level is enqueued. ParentNodeID is set on
// every non-root node in the result.
func SortThingNodes(thingNodes []*ThingNode, existingIDs map[NaturalKey]uuid.UUID) []*ThingNode {
	byKey := make(map[NaturalKey]*ThingNode, len(thingNodes))
	for _, tn := range thingNodes {
		byKey[tn.Key()] = tn
	}

	for _, tn := range thingNodes {
		if id, ok := existingIDs[tn.Key()]; ok {
			tn.ID = id
		}
	}

	childrenByNodeID := make(map[uuid.UUID][]*ThingNode)
	var roots []*ThingNode
	for _, tn := range thingNodes {
		parentKey, hasParent := tn.ParentKey()
		if !hasParent {
			tn.ParentNodeID = nil
			roots = append(roots, tn)
			continue
		}
		parent, ok := byKey[parentKey]
		if !ok {
			slog.Warn("orphan node excluded from sort: parent not found",
				"node", tn.ExternalID, "parent", parentKey.String())
			continue
		}
		parentID := parent.ID
		tn.ParentNodeID = &parentID
		childrenByNodeID[parent.ID] = append(childrenByNodeID[parent.ID], tn)
	}

	sorted := make([]*ThingNode, 0, len(thingNodes))
	level := roots
	for len(level) > 0 {
		var next []*ThingNode
		for _, node := range level {
			sorted = append(sorted, node)
			children := childrenByNodeID[node.ID]
			sort.Slice(children, func(i, j int) bool {
				return children[i].ExternalID < children[j].ExternalID
			})
			next = append(next, children...)
		}
		level = next
	}
	return sorted
}
