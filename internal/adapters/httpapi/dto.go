// Package httpapi exposes the structure catalog over HTTP: the
// lazy-loading browse endpoints consumed by frontends plus the
// structure update endpoint.
package httpapi

import (
	"github.com/google/uuid"

	"structura/internal/domain"
)

// thingNodeDTO is the wire shape of a thing node in browse responses.
type thingNodeDTO struct {
	ID          uuid.UUID  `json:"id"`
	ParentID    *uuid.UUID `json:"parentId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

func newThingNodeDTO(tn *domain.ThingNode) thingNodeDTO {
	return thingNodeDTO{
		ID:          tn.ID,
		ParentID:    tn.ParentNodeID,
		Name:        tn.Name,
		Description: tn.Description,
	}
}

// sourceDTO is the wire shape of a source. ThingNodeID mirrors the
// source's own id so metadata sources can fill their wiring reference.
type sourceDTO struct {
	ID          uuid.UUID                `json:"id"`
	ThingNodeID uuid.UUID                `json:"thingNodeId"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	Visible     bool                     `json:"visible"`
	Path        string                   `json:"path"`
	MetadataKey *string                  `json:"metadataKey"`
	Filters     map[string]domain.Filter `json:"filters"`
}

func newSourceDTO(src *domain.Source) sourceDTO {
	return sourceDTO{
		ID:          src.ID,
		ThingNodeID: src.ID,
		Name:        src.Name,
		Type:        src.Type,
		Visible:     true,
		Path:        src.DisplayPath,
		MetadataKey: src.RefKey,
		Filters:     filtersByInternalName(src.PassthroughFilters),
	}
}

type sinkDTO struct {
	ID          uuid.UUID                `json:"id"`
	ThingNodeID uuid.UUID                `json:"thingNodeId"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	Visible     bool                     `json:"visible"`
	Path        string                   `json:"path"`
	MetadataKey *string                  `json:"metadataKey"`
	Filters     map[string]domain.Filter `json:"filters"`
}

func newSinkDTO(snk *domain.Sink) sinkDTO {
	return sinkDTO{
		ID:          snk.ID,
		ThingNodeID: snk.ID,
		Name:        snk.Name,
		Type:        snk.Type,
		Visible:     true,
		Path:        snk.DisplayPath,
		MetadataKey: snk.RefKey,
		Filters:     filtersByInternalName(snk.PassthroughFilters),
	}
}

func filtersByInternalName(filters []domain.Filter) map[string]domain.Filter {
	out := make(map[string]domain.Filter, len(filters))
	for _, f := range filters {
		out[f.InternalName] = f
	}
	return out
}

// structureResponse is one level of the tree for lazy-loading browsers.
type structureResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	ThingNodes []thingNodeDTO `json:"thingNodes"`
	Sources    []sourceDTO    `json:"sources"`
	Sinks      []sinkDTO      `json:"sinks"`
}

func newStructureResponse(level *domain.StructureLevel) structureResponse {
	resp := structureResponse{
		ID:         adapterID,
		Name:       adapterName,
		ThingNodes: make([]thingNodeDTO, 0, len(level.ThingNodes)),
		Sources:    make([]sourceDTO, 0, len(level.Sources)),
		Sinks:      make([]sinkDTO, 0, len(level.Sinks)),
	}
	for _, tn := range level.ThingNodes {
		resp.ThingNodes = append(resp.ThingNodes, newThingNodeDTO(tn))
	}
	for _, src := range level.Sources {
		resp.Sources = append(resp.Sources, newSourceDTO(src))
	}
	for _, snk := range level.Sinks {
		resp.Sinks = append(resp.Sinks, newSinkDTO(snk))
	}
	return resp
}

type multipleSourcesResponse struct {
	ResultCount int         `json:"resultCount"`
	Sources     []sourceDTO `json:"sources"`
}

type multipleSinksResponse struct {
	ResultCount int       `json:"resultCount"`
	Sinks       []sinkDTO `json:"sinks"`
}

type infoResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
