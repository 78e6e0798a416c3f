package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"structura/internal/domain"
)

const upsertElementTypeSQL = `
	INSERT INTO element_type (id, external_id, stakeholder_key, name, description)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (stakeholder_key, external_id) DO UPDATE SET
		name = excluded.name,
		description = excluded.description`

// upsertElementTypes writes element types in a single pass. Incoming
// entities matching an existing row adopt its surrogate id first, so the
// conflict path never swaps an id out from under its referencing nodes.
func (s *Store) upsertElementTypes(ctx context.Context, q querier, elementTypes []*domain.ElementType, existing map[domain.NaturalKey]*domain.ElementType) error {
	for _, et := range elementTypes {
		if prev, ok := existing[et.Key()]; ok {
			et.ID = prev.ID
		}
		_, err := q.ExecContext(ctx, upsertElementTypeSQL,
			et.ID.String(), et.ExternalID, et.StakeholderKey, et.Name, nullString(et.Description))
		if err != nil {
			return fmt.Errorf("upserting element type %s: %w", et.Key(), err)
		}
	}
	return nil
}

const upsertThingNodeSQL = `
	INSERT INTO thing_node (id, external_id, stakeholder_key, name, description,
		parent_node_id, parent_external_node_id, element_type_id, element_type_external_id, meta_data)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (stakeholder_key, external_id) DO UPDATE SET
		name = excluded.name,
		description = excluded.description,
		parent_node_id = excluded.parent_node_id,
		parent_external_node_id = excluded.parent_external_node_id,
		element_type_id = excluded.element_type_id,
		element_type_external_id = excluded.element_type_external_id,
		meta_data = excluded.meta_data`

// upsertThingNodes writes nodes in slice order, which must already be
// parent-before-child (see domain.SortThingNodes). Nodes whose element
// type cannot be resolved are skipped with a warning rather than
// aborting the whole synchronization.
func (s *Store) upsertThingNodes(ctx context.Context, q querier, thingNodes []*domain.ThingNode, elementTypeIDs map[domain.NaturalKey]uuid.UUID) error {
	for _, tn := range thingNodes {
		etKey := domain.NaturalKey{StakeholderKey: tn.StakeholderKey, ExternalID: tn.ElementTypeExternalID}
		etID, ok := elementTypeIDs[etKey]
		if !ok {
			s.log.Warn("skipping thing node: element type not found",
				"node", tn.Key().String(), "element_type", etKey.String())
			continue
		}
		tn.ElementTypeID = etID

		var parentID any
		if tn.ParentNodeID != nil {
			parentID = tn.ParentNodeID.String()
		}
		metaData, err := marshalJSON(tn.MetaData, tn.MetaData == nil)
		if err != nil {
			return fmt.Errorf("encoding meta data for node %s: %w", tn.Key(), err)
		}
		_, err = q.ExecContext(ctx, upsertThingNodeSQL,
			tn.ID.String(), tn.ExternalID, tn.StakeholderKey, tn.Name, nullString(tn.Description),
			parentID, nullStringPtr(tn.ParentExternalNodeID), etID.String(), tn.ElementTypeExternalID, metaData)
		if err != nil {
			return fmt.Errorf("upserting thing node %s: %w", tn.Key(), err)
		}
	}
	return nil
}

const upsertSourceSQL = `
	INSERT INTO source (id, external_id, stakeholder_key, name, type, visible,
		display_path, adapter_key, source_id, ref_key, ref_id, meta_data,
		preset_filters, passthrough_filters, thing_node_external_ids)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (stakeholder_key, external_id) DO UPDATE SET
		name = excluded.name,
		type = excluded.type,
		visible = excluded.visible,
		display_path = excluded.display_path,
		adapter_key = excluded.adapter_key,
		source_id = excluded.source_id,
		ref_key = excluded.ref_key,
		ref_id = excluded.ref_id,
		meta_data = excluded.meta_data,
		preset_filters = excluded.preset_filters,
		passthrough_filters = excluded.passthrough_filters,
		thing_node_external_ids = excluded.thing_node_external_ids`

func (s *Store) upsertSources(ctx context.Context, q querier, sources []*domain.Source, existing map[domain.NaturalKey]*domain.Source) error {
	for _, src := range sources {
		if prev, ok := existing[src.Key()]; ok {
			src.ID = prev.ID
		}
		args, err := sourceArgs(src)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, upsertSourceSQL, args...); err != nil {
			return fmt.Errorf("upserting source %s: %w", src.Key(), err)
		}
	}
	return nil
}

const upsertSinkSQL = `
	INSERT INTO sink (id, external_id, stakeholder_key, name, type, visible,
		display_path, adapter_key, sink_id, ref_key, ref_id, meta_data,
		preset_filters, passthrough_filters, thing_node_external_ids)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (stakeholder_key, external_id) DO UPDATE SET
		name = excluded.name,
		type = excluded.type,
		visible = excluded.visible,
		display_path = excluded.display_path,
		adapter_key = excluded.adapter_key,
		sink_id = excluded.sink_id,
		ref_key = excluded.ref_key,
		ref_id = excluded.ref_id,
		meta_data = excluded.meta_data,
		preset_filters = excluded.preset_filters,
		passthrough_filters = excluded.passthrough_filters,
		thing_node_external_ids = excluded.thing_node_external_ids`

func (s *Store) upsertSinks(ctx context.Context, q querier, sinks []*domain.Sink, existing map[domain.NaturalKey]*domain.Sink) error {
	for _, snk := range sinks {
		if prev, ok := existing[snk.Key()]; ok {
			snk.ID = prev.ID
		}
		args, err := sinkArgs(snk)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, upsertSinkSQL, args...); err != nil {
			return fmt.Errorf("upserting sink %s: %w", snk.Key(), err)
		}
	}
	return nil
}

func sourceArgs(src *domain.Source) ([]any, error) {
	metaData, err := marshalJSON(src.MetaData, src.MetaData == nil)
	if err != nil {
		return nil, fmt.Errorf("encoding meta data for source %s: %w", src.Key(), err)
	}
	preset := src.PresetFilters
	if preset == nil {
		preset = map[string]any{}
	}
	presetJSON, err := marshalJSON(preset, false)
	if err != nil {
		return nil, fmt.Errorf("encoding preset filters for source %s: %w", src.Key(), err)
	}
	passthrough, err := marshalJSON(src.PassthroughFilters, src.PassthroughFilters == nil)
	if err != nil {
		return nil, fmt.Errorf("encoding passthrough filters for source %s: %w", src.Key(), err)
	}
	nodeIDs, err := marshalJSON(src.ThingNodeExternalID, src.ThingNodeExternalID == nil)
	if err != nil {
		return nil, fmt.Errorf("encoding node references for source %s: %w", src.Key(), err)
	}
	return []any{
		src.ID.String(), src.ExternalID, src.StakeholderKey, src.Name, src.Type, src.Visible,
		src.DisplayPath, src.AdapterKey, src.SourceID, nullStringPtr(src.RefKey), src.RefID,
		metaData, presetJSON, passthrough, nodeIDs,
	}, nil
}

func sinkArgs(snk *domain.Sink) ([]any, error) {
	metaData, err := marshalJSON(snk.MetaData, snk.MetaData == nil)
	if err != nil {
		return nil, fmt.Errorf("encoding meta data for sink %s: %w", snk.Key(), err)
	}
	preset := snk.PresetFilters
	if preset == nil {
		preset = map[string]any{}
	}
	presetJSON, err := marshalJSON(preset, false)
	if err != nil {
		return nil, fmt.Errorf("encoding preset filters for sink %s: %w", snk.Key(), err)
	}
	passthrough, err := marshalJSON(snk.PassthroughFilters, snk.PassthroughFilters == nil)
	if err != nil {
		return nil, fmt.Errorf("encoding passthrough filters for sink %s: %w", snk.Key(), err)
	}
	nodeIDs, err := marshalJSON(snk.ThingNodeExternalID, snk.ThingNodeExternalID == nil)
	if err != nil {
		return nil, fmt.Errorf("encoding node references for sink %s: %w", snk.Key(), err)
	}
	return []any{
		snk.ID.String(), snk.ExternalID, snk.StakeholderKey, snk.Name, snk.Type, snk.Visible,
		snk.DisplayPath, snk.AdapterKey, snk.SinkID, nullStringPtr(snk.RefKey), snk.RefID,
		metaData, presetJSON, passthrough, nodeIDs,
	}, nil
}

// reconcileSourceAssociations replaces each source's node links with the
// set declared in the document: one delete per source, then one batched
// insert. Node references that resolve to nothing are skipped with a
// warning.
func (s *Store) reconcileSourceAssociations(ctx context.Context, q querier, sources []*domain.Source, nodeIDs map[domain.NaturalKey]uuid.UUID) error {
	type pair struct{ nodeID, entityID string }
	var pairs []pair
	for _, src := range sources {
		if _, err := q.ExecContext(ctx,
			"DELETE FROM thingnode_source_association WHERE source_id = ?", src.ID.String()); err != nil {
			return fmt.Errorf("clearing associations for source %s: %w", src.Key(), err)
		}
		seen := make(map[uuid.UUID]struct{}, len(src.ThingNodeExternalID))
		for _, extID := range src.ThingNodeExternalID {
			key := domain.NaturalKey{StakeholderKey: src.StakeholderKey, ExternalID: extID}
			nodeID, ok := nodeIDs[key]
			if !ok {
				s.log.Warn("skipping source association: thing node not found",
					"source", src.Key().String(), "node", key.String())
				continue
			}
			if _, dup := seen[nodeID]; dup {
				continue
			}
			seen[nodeID] = struct{}{}
			pairs = append(pairs, pair{nodeID: nodeID.String(), entityID: src.ID.String()})
		}
	}
	for start := 0; start < len(pairs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]any, 0, 2*len(chunk))
		for i, p := range chunk {
			placeholders[i] = "(?, ?)"
			args = append(args, p.nodeID, p.entityID)
		}
		query := "INSERT INTO thingnode_source_association (thing_node_id, source_id) VALUES " +
			strings.Join(placeholders, ", ")
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting source associations: %w", err)
		}
	}
	return nil
}

// reconcileSinkAssociations mirrors reconcileSourceAssociations for the
// sink side.
func (s *Store) reconcileSinkAssociations(ctx context.Context, q querier, sinks []*domain.Sink, nodeIDs map[domain.NaturalKey]uuid.UUID) error {
	type pair struct{ nodeID, entityID string }
	var pairs []pair
	for _, snk := range sinks {
		if _, err := q.ExecContext(ctx,
			"DELETE FROM thingnode_sink_association WHERE sink_id = ?", snk.ID.String()); err != nil {
			return fmt.Errorf("clearing associations for sink %s: %w", snk.Key(), err)
		}
		seen := make(map[uuid.UUID]struct{}, len(snk.ThingNodeExternalID))
		for _, extID := range snk.ThingNodeExternalID {
			key := domain.NaturalKey{StakeholderKey: snk.StakeholderKey, ExternalID: extID}
			nodeID, ok := nodeIDs[key]
			if !ok {
				s.log.Warn("skipping sink association: thing node not found",
					"sink", snk.Key().String(), "node", key.String())
				continue
			}
			if _, dup := seen[nodeID]; dup {
				continue
			}
			seen[nodeID] = struct{}{}
			pairs = append(pairs, pair{nodeID: nodeID.String(), entityID: snk.ID.String()})
		}
	}
	for start := 0; start < len(pairs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]any, 0, 2*len(chunk))
		for i, p := range chunk {
			placeholders[i] = "(?, ?)"
			args = append(args, p.nodeID, p.entityID)
		}
		query := "INSERT INTO thingnode_sink_association (thing_node_id, sink_id) VALUES " +
			strings.Join(placeholders, ", ")
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting sink associations: %w", err)
		}
	}
	return nil
}
