package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"structura/internal/domain"
)

const (
	elementTypeColumns = "id, external_id, stakeholder_key, name, description"
	thingNodeColumns   = "id, external_id, stakeholder_key, name, description, " +
		"parent_node_id, parent_external_node_id, element_type_id, element_type_external_id, meta_data"
	sourceColumns = "id, external_id, stakeholder_key, name, type, visible, " +
		"display_path, adapter_key, source_id, ref_key, ref_id, meta_data, " +
		"preset_filters, passthrough_filters, thing_node_external_ids"
	sinkColumns = "id, external_id, stakeholder_key, name, type, visible, " +
		"display_path, adapter_key, sink_id, ref_key, ref_id, meta_data, " +
		"preset_filters, passthrough_filters, thing_node_external_ids"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// keyBatches splits keys into batches and renders each into a
// (stakeholder_key, external_id) IN (VALUES ...) clause with its args.
func (s *Store) keyBatches(keys []domain.NaturalKey) []struct {
	clause string
	args   []any
} {
	var batches []struct {
		clause string
		args   []any
	}
	for start := 0; start < len(keys); start += s.batchSize {
		end := start + s.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]any, 0, 2*len(chunk))
		for i, k := range chunk {
			placeholders[i] = "(?, ?)"
			args = append(args, k.StakeholderKey, k.ExternalID)
		}
		batches = append(batches, struct {
			clause string
			args   []any
		}{
			clause: "(stakeholder_key, external_id) IN (VALUES " + strings.Join(placeholders, ", ") + ")",
			args:   args,
		})
	}
	return batches
}

// fetchElementTypes resolves the given natural keys to the stored element
// type rows. Keys without a row are simply absent from the result.
func (s *Store) fetchElementTypes(ctx context.Context, q querier, keys []domain.NaturalKey) (map[domain.NaturalKey]*domain.ElementType, error) {
	found := make(map[domain.NaturalKey]*domain.ElementType, len(keys))
	for _, batch := range s.keyBatches(keys) {
		query := "SELECT " + elementTypeColumns + " FROM element_type WHERE " + batch.clause
		rows, err := q.QueryContext(ctx, query, batch.args...)
		if err != nil {
			return nil, fmt.Errorf("fetching element types: %w", err)
		}
		for rows.Next() {
			et, err := scanElementType(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			found[et.Key()] = et
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return found, nil
}

func (s *Store) fetchThingNodes(ctx context.Context, q querier, keys []domain.NaturalKey) (map[domain.NaturalKey]*domain.ThingNode, error) {
	found := make(map[domain.NaturalKey]*domain.ThingNode, len(keys))
	for _, batch := range s.keyBatches(keys) {
		query := "SELECT " + thingNodeColumns + " FROM thing_node WHERE " + batch.clause
		rows, err := q.QueryContext(ctx, query, batch.args...)
		if err != nil {
			return nil, fmt.Errorf("fetching thing nodes: %w", err)
		}
		for rows.Next() {
			tn, err := scanThingNode(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			found[tn.Key()] = tn
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return found, nil
}

func (s *Store) fetchSources(ctx context.Context, q querier, keys []domain.NaturalKey) (map[domain.NaturalKey]*domain.Source, error) {
	found := make(map[domain.NaturalKey]*domain.Source, len(keys))
	for _, batch := range s.keyBatches(keys) {
		query := "SELECT " + sourceColumns + " FROM source WHERE " + batch.clause
		rows, err := q.QueryContext(ctx, query, batch.args...)
		if err != nil {
			return nil, fmt.Errorf("fetching sources: %w", err)
		}
		for rows.Next() {
			src, err := scanSource(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			found[src.Key()] = src
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return found, nil
}

func (s *Store) fetchSinks(ctx context.Context, q querier, keys []domain.NaturalKey) (map[domain.NaturalKey]*domain.Sink, error) {
	found := make(map[domain.NaturalKey]*domain.Sink, len(keys))
	for _, batch := range s.keyBatches(keys) {
		query := "SELECT " + sinkColumns + " FROM sink WHERE " + batch.clause
		rows, err := q.QueryContext(ctx, query, batch.args...)
		if err != nil {
			return nil, fmt.Errorf("fetching sinks: %w", err)
		}
		for rows.Next() {
			snk, err := scanSink(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			found[snk.Key()] = snk
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return found, nil
}

func scanElementType(r rowScanner) (*domain.ElementType, error) {
	var (
		et          domain.ElementType
		id          string
		description sql.NullString
	)
	if err := r.Scan(&id, &et.ExternalID, &et.StakeholderKey, &et.Name, &description); err != nil {
		return nil, fmt.Errorf("scanning element type: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid element type id %q: %w", id, err)
	}
	et.ID = parsed
	et.Description = description.String
	return &et, nil
}

func scanThingNode(r rowScanner) (*domain.ThingNode, error) {
	var (
		tn           domain.ThingNode
		id           string
		description  sql.NullString
		parentNodeID sql.NullString
		parentExtID  sql.NullString
		etID         string
		metaData     sql.NullString
	)
	if err := r.Scan(&id, &tn.ExternalID, &tn.StakeholderKey, &tn.Name, &description,
		&parentNodeID, &parentExtID, &etID, &tn.ElementTypeExternalID, &metaData); err != nil {
		return nil, fmt.Errorf("scanning thing node: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid thing node id %q: %w", id, err)
	}
	tn.ID = parsed
	tn.Description = description.String
	if parentNodeID.Valid {
		pid, err := uuid.Parse(parentNodeID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid parent node id %q: %w", parentNodeID.String, err)
		}
		tn.ParentNodeID = &pid
	}
	if parentExtID.Valid {
		v := parentExtID.String
		tn.ParentExternalNodeID = &v
	}
	tn.ElementTypeID, err = uuid.Parse(etID)
	if err != nil {
		return nil, fmt.Errorf("invalid element type id %q: %w", etID, err)
	}
	if err := unmarshalJSON(metaData, &tn.MetaData); err != nil {
		return nil, fmt.Errorf("decoding thing node meta data: %w", err)
	}
	return &tn, nil
}

func scanSource(r rowScanner) (*domain.Source, error) {
	var (
		src         domain.Source
		id          string
		refKey      sql.NullString
		metaData    sql.NullString
		preset      sql.NullString
		passthrough sql.NullString
		nodeIDs     sql.NullString
	)
	if err := r.Scan(&id, &src.ExternalID, &src.StakeholderKey, &src.Name, &src.Type,
		&src.Visible, &src.DisplayPath, &src.AdapterKey, &src.SourceID,
		&refKey, &src.RefID, &metaData, &preset, &passthrough, &nodeIDs); err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid source id %q: %w", id, err)
	}
	src.ID = parsed
	if refKey.Valid {
		v := refKey.String
		src.RefKey = &v
	}
	if err := unmarshalJSON(metaData, &src.MetaData); err != nil {
		return nil, fmt.Errorf("decoding source meta data: %w", err)
	}
	if err := unmarshalJSON(preset, &src.PresetFilters); err != nil {
		return nil, fmt.Errorf("decoding source preset filters: %w", err)
	}
	if src.PresetFilters == nil {
		src.PresetFilters = map[string]any{}
	}
	if err := unmarshalJSON(passthrough, &src.PassthroughFilters); err != nil {
		return nil, fmt.Errorf("decoding source passthrough filters: %w", err)
	}
	if err := unmarshalJSON(nodeIDs, &src.ThingNodeExternalID); err != nil {
		return nil, fmt.Errorf("decoding source node references: %w", err)
	}
	return &src, nil
}

func scanSink(r rowScanner) (*domain.Sink, error) {
	var (
		snk         domain.Sink
		id          string
		refKey      sql.NullString
		metaData    sql.NullString
		preset      sql.NullString
		passthrough sql.NullString
		nodeIDs     sql.NullString
	)
	if err := r.Scan(&id, &snk.ExternalID, &snk.StakeholderKey, &snk.Name, &snk.Type,
		&snk.Visible, &snk.DisplayPath, &snk.AdapterKey, &snk.SinkID,
		&refKey, &snk.RefID, &metaData, &preset, &passthrough, &nodeIDs); err != nil {
		return nil, fmt.Errorf("scanning sink: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sink id %q: %w", id, err)
	}
	snk.ID = parsed
	if refKey.Valid {
		v := refKey.String
		snk.RefKey = &v
	}
	if err := unmarshalJSON(metaData, &snk.MetaData); err != nil {
		return nil, fmt.Errorf("decoding sink meta data: %w", err)
	}
	if err := unmarshalJSON(preset, &snk.PresetFilters); err != nil {
		return nil, fmt.Errorf("decoding sink preset filters: %w", err)
	}
	if snk.PresetFilters == nil {
		snk.PresetFilters = map[string]any{}
	}
	if err := unmarshalJSON(passthrough, &snk.PassthroughFilters); err != nil {
		return nil, fmt.Errorf("decoding sink passthrough filters: %w", err)
	}
	if err := unmarshalJSON(nodeIDs, &snk.ThingNodeExternalID); err != nil {
		return nil, fmt.Errorf("decoding sink node references: %w", err)
	}
	return &snk, nil
}
