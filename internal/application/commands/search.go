package commands

import (
	"context"
	"fmt"

	"structura/internal/application"
	"structura/internal/domain"
	"structura/internal/ports"
)

// SearchKind selects which entity kind a search targets
type SearchKind string

const (
	SearchKindElementType SearchKind = "element-type"
	SearchKindThingNode   SearchKind = "thing-node"
	SearchKindSource      SearchKind = "source"
	SearchKindSink        SearchKind = "sink"
	SearchKindAll         SearchKind = "all"
)

// ParseSearchKind parses a search kind argument
func ParseSearchKind(raw string) (SearchKind, error) {
	switch SearchKind(raw) {
	case SearchKindElementType, SearchKindThingNode, SearchKindSource, SearchKindSink, SearchKindAll:
		return SearchKind(raw), nil
	default:
		return "", &application.ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown search kind %q (expected element-type, thing-node, source, sink or all)", raw),
		}
	}
}

// SearchResult contains name search matches, grouped by entity kind
type SearchResult struct {
	ElementTypes []*domain.ElementType
	ThingNodes   []*domain.ThingNode
	Sources      []*domain.Source
	Sinks        []*domain.Sink
}

// Total returns the number of matches across all kinds
func (r *SearchResult) Total() int {
	return len(r.ElementTypes) + len(r.ThingNodes) + len(r.Sources) + len(r.Sinks)
}

// SearchCommand runs a case-insensitive substring search over entity
// names
type SearchCommand struct {
	store ports.StructureStore
	Kind  SearchKind
	Query string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(store ports.StructureStore, kind SearchKind, query string) *SearchCommand {
	return &SearchCommand{store: store, Kind: kind, Query: query}
}

// Execute runs the search command
func (c *SearchCommand) Execute(ctx context.Context) (*SearchResult, error) {
	result := &SearchResult{}
	var err error

	if c.Kind == SearchKindElementType || c.Kind == SearchKindAll {
		result.ElementTypes, err = c.store.SearchElementTypesByName(ctx, c.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to search element types: %w", err)
		}
	}
	if c.Kind == SearchKindThingNode || c.Kind == SearchKindAll {
		result.ThingNodes, err = c.store.SearchThingNodesByName(ctx, c.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to search thing nodes: %w", err)
		}
	}
	if c.Kind == SearchKindSource || c.Kind == SearchKindAll {
		result.Sources, err = c.store.SearchSourcesByName(ctx, c.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to search sources: %w", err)
		}
	}
	if c.Kind == SearchKindSink || c.Kind == SearchKindAll {
		result.Sinks, err = c.store.SearchSinksByName(ctx, c.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to search sinks: %w", err)
		}
	}
	return result, nil
}
