package domain

// StructureLevel is one level of the navigable tree: the direct child
// nodes of a parent plus the sources and sinks attached to the parent
// itself. For the root level the source and sink lists are empty.
type StructureLevel struct {
	ThingNodes []*ThingNode
	Sources    []*Source
	Sinks      []*Sink
}
