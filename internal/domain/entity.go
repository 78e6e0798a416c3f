// Package domain holds the structure catalog entities and the pure
// document logic: parsing, validation and hierarchy sorting. Nothing in
// this package touches a database.
package domain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NaturalKey identifies an entity independently of its store-assigned
// surrogate id. It is unique per entity kind.
type NaturalKey struct {
	StakeholderKey string
	ExternalID     string
}

func (k NaturalKey) String() string {
	return k.StakeholderKey + "/" + k.ExternalID
}

// ElementType classifies thing nodes.
type ElementType struct {
	ID             uuid.UUID `json:"id,omitempty"`
	ExternalID     string    `json:"external_id"`
	StakeholderKey string    `json:"stakeholder_key"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
}

// Key returns the element type's natural key.
func (et *ElementType) Key() NaturalKey {
	return NaturalKey{StakeholderKey: et.StakeholderKey, ExternalID: et.ExternalID}
}

// ThingNode is one node of the navigable hierarchy. ParentExternalNodeID
// references the parent by external id within the same stakeholder key;
// nil means the node is a root. ParentNodeID and ElementTypeID are the
// resolved surrogate ids, populated during synchronization.
type ThingNode struct {
	ID                    uuid.UUID      `json:"id,omitempty"`
	ExternalID            string         `json:"external_id"`
	StakeholderKey        string         `json:"stakeholder_key"`
	Name                  string         `json:"name"`
	Description           string         `json:"description,omitempty"`
	ParentExternalNodeID  *string        `json:"parent_external_node_id,omitempty"`
	ParentNodeID          *uuid.UUID     `json:"parent_node_id,omitempty"`
	ElementTypeExternalID string         `json:"element_type_external_id"`
	ElementTypeID         uuid.UUID      `json:"element_type_id,omitempty"`
	MetaData              map[string]any `json:"meta_data,omitempty"`
}

// Key returns the thing node's natural key.
func (tn *ThingNode) Key() NaturalKey {
	return NaturalKey{StakeholderKey: tn.StakeholderKey, ExternalID: tn.ExternalID}
}

// ParentKey returns the natural key of the declared parent, or false for
// root nodes.
func (tn *ThingNode) ParentKey() (NaturalKey, bool) {
	if tn.ParentExternalNodeID == nil || *tn.ParentExternalNodeID == "" {
		return NaturalKey{}, false
	}
	return NaturalKey{StakeholderKey: tn.StakeholderKey, ExternalID: *tn.ParentExternalNodeID}, true
}

// Source is a data source attachable to thing nodes.
type Source struct {
	ID                  uuid.UUID      `json:"id,omitempty"`
	ExternalID          string         `json:"external_id"`
	StakeholderKey      string         `json:"stakeholder_key"`
	Name                string         `json:"name"`
	Type                string         `json:"type"`
	Visible             bool           `json:"visible"`
	DisplayPath         string         `json:"display_path"`
	AdapterKey          string         `json:"adapter_key"`
	SourceID            string         `json:"source_id"`
	RefKey              *string        `json:"ref_key,omitempty"`
	RefID               string         `json:"ref_id"`
	MetaData            map[string]any `json:"meta_data,omitempty"`
	PresetFilters       map[string]any `json:"preset_filters"`
	PassthroughFilters  []Filter       `json:"passthrough_filters,omitempty"`
	ThingNodeExternalID []string       `json:"thing_node_external_ids,omitempty"`
}

// Key returns the source's natural key.
func (s *Source) Key() NaturalKey {
	return NaturalKey{StakeholderKey: s.StakeholderKey, ExternalID: s.ExternalID}
}

// Sink is a data sink attachable to thing nodes. It mirrors Source with
// a sink-side adapter routing id.
type Sink struct {
	ID                  uuid.UUID      `json:"id,omitempty"`
	ExternalID          string         `json:"external_id"`
	StakeholderKey      string         `json:"stakeholder_key"`
	Name                string         `json:"name"`
	Type                string         `json:"type"`
	Visible             bool           `json:"visible"`
	DisplayPath         string         `json:"display_path"`
	AdapterKey          string         `json:"adapter_key"`
	SinkID              string         `json:"sink_id"`
	RefKey              *string        `json:"ref_key,omitempty"`
	RefID               string         `json:"ref_id"`
	MetaData            map[string]any `json:"meta_data,omitempty"`
	PresetFilters       map[string]any `json:"preset_filters"`
	PassthroughFilters  []Filter       `json:"passthrough_filters,omitempty"`
	ThingNodeExternalID []string       `json:"thing_node_external_ids,omitempty"`
}

// Key returns the sink's natural key.
func (s *Sink) Key() NaturalKey {
	return NaturalKey{StakeholderKey: s.StakeholderKey, ExternalID: s.ExternalID}
}

// CompleteStructure is the unit of input to a synchronization: one full
// structure document.
type CompleteStructure struct {
	ElementTypes []*ElementType `json:"element_types"`
	ThingNodes   []*ThingNode   `json:"thing_nodes"`
	Sources      []*Source      `json:"sources"`
	Sinks        []*Sink        `json:"sinks"`
}

// ParseCompleteStructure unmarshals a structure document, assigns fresh
// surrogate ids where the document carries none, normalizes filters and
// validates the result. A malformed document yields a *ParsingError, an
// inconsistent one a *ValidationError.
func ParseCompleteStructure(data []byte) (*CompleteStructure, error) {
	var cs CompleteStructure
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, &ParsingError{Message: "parsing structure document", Err: err}
	}
	cs.Normalize()
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return &cs, nil
}

// Normalize assigns missing surrogate ids and derives filter internal
// names. It is idempotent and called automatically by
// ParseCompleteStructure; callers building documents in code should run
// it before handing the document to a store.
func (cs *CompleteStructure) Normalize() {
	cs.assignIDs()
	cs.normalizeFilters()
}

// LoadStructureFromFile reads and parses a structure document from a
// JSON file.
func LoadStructureFromFile(path string) (*CompleteStructure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading structure file %s: %w", path, err)
	}
	cs, err := ParseCompleteStructure(data)
	if err != nil {
		return nil, fmt.Errorf("structure file %s: %w", path, err)
	}
	return cs, nil
}

// assignIDs gives every entity without a surrogate id a fresh one.
// Existing store ids are adopted later, during synchronization.
func (cs *CompleteStructure) assignIDs() {
	for _, et := range cs.ElementTypes {
		if et.ID == uuid.Nil {
			et.ID = uuid.New()
		}
	}
	for _, tn := range cs.ThingNodes {
		if tn.ID == uuid.Nil {
			tn.ID = uuid.New()
		}
	}
	for _, src := range cs.Sources {
		if src.ID == uuid.Nil {
			src.ID = uuid.New()
		}
	}
	for _, snk := range cs.Sinks {
		if snk.ID == uuid.Nil {
			snk.ID = uuid.New()
		}
	}
}

func (cs *CompleteStructure) normalizeFilters() {
	for _, src := range cs.Sources {
		for i := range src.PassthroughFilters {
			src.PassthroughFilters[i].normalize()
		}
	}
	for _, snk := range cs.Sinks {
		for i := range snk.PassthroughFilters {
			snk.PassthroughFilters[i].normalize()
		}
	}
}
