package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"structura/internal/application"
	"structura/internal/domain"
)

// GetChildren returns one level of the navigable tree. With a nil parent
// id it returns the root nodes and empty source/sink lists; otherwise
// the direct children of the parent plus the sources and sinks attached
// to the parent itself.
func (s *Store) GetChildren(ctx context.Context, parentID *uuid.UUID) (*domain.StructureLevel, error) {
	if parentID == nil {
		nodes, err := s.queryThingNodes(ctx,
			"SELECT "+thingNodeColumns+" FROM thing_node WHERE parent_node_id IS NULL ORDER BY external_id")
		if err != nil {
			return nil, err
		}
		return &domain.StructureLevel{
			ThingNodes: nodes,
			Sources:    []*domain.Source{},
			Sinks:      []*domain.Sink{},
		}, nil
	}

	if _, err := s.GetThingNode(ctx, *parentID); err != nil {
		return nil, err
	}

	nodes, err := s.queryThingNodes(ctx,
		"SELECT "+thingNodeColumns+" FROM thing_node WHERE parent_node_id = ? ORDER BY external_id",
		parentID.String())
	if err != nil {
		return nil, err
	}
	sources, err := s.querySources(ctx,
		"SELECT "+prefixColumns("s", sourceColumns)+" FROM source s "+
			"JOIN thingnode_source_association a ON a.source_id = s.id "+
			"WHERE a.thing_node_id = ? ORDER BY s.external_id",
		parentID.String())
	if err != nil {
		return nil, err
	}
	sinks, err := s.querySinks(ctx,
		"SELECT "+prefixColumns("s", sinkColumns)+" FROM sink s "+
			"JOIN thingnode_sink_association a ON a.sink_id = s.id "+
			"WHERE a.thing_node_id = ? ORDER BY s.external_id",
		parentID.String())
	if err != nil {
		return nil, err
	}
	return &domain.StructureLevel{ThingNodes: nodes, Sources: sources, Sinks: sinks}, nil
}

// GetThingNode fetches a single thing node by surrogate id.
func (s *Store) GetThingNode(ctx context.Context, id uuid.UUID) (*domain.ThingNode, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+thingNodeColumns+" FROM thing_node WHERE id = ?", id.String())
	tn, err := scanThingNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thing node %s: %w", id, application.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get thing node", err)
	}
	return tn, nil
}

// GetSource fetches a single source by surrogate id.
func (s *Store) GetSource(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM source WHERE id = ?", id.String())
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %s: %w", id, application.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get source", err)
	}
	return src, nil
}

// GetSink fetches a single sink by surrogate id.
func (s *Store) GetSink(ctx context.Context, id uuid.UUID) (*domain.Sink, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sinkColumns+" FROM sink WHERE id = ?", id.String())
	snk, err := scanSink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sink %s: %w", id, application.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get sink", err)
	}
	return snk, nil
}

// GetThingNodesByIDs resolves a batch of surrogate ids. Absent ids are
// simply missing from the result map; a non-empty input that matches
// nothing at all yields ErrNotFound.
func (s *Store) GetThingNodesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.ThingNode, error) {
	found := make(map[uuid.UUID]*domain.ThingNode, len(ids))
	for _, batch := range s.idBatches(ids) {
		nodes, err := s.queryThingNodes(ctx,
			"SELECT "+thingNodeColumns+" FROM thing_node WHERE id IN ("+batch.clause+")",
			batch.args...)
		if err != nil {
			return nil, err
		}
		for _, tn := range nodes {
			found[tn.ID] = tn
		}
	}
	if len(ids) > 0 && len(found) == 0 {
		return nil, fmt.Errorf("thing nodes by ids: %w", application.ErrNotFound)
	}
	return found, nil
}

// GetSourcesByIDs resolves a batch of surrogate ids, like
// GetThingNodesByIDs.
func (s *Store) GetSourcesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Source, error) {
	found := make(map[uuid.UUID]*domain.Source, len(ids))
	for _, batch := range s.idBatches(ids) {
		sources, err := s.querySources(ctx,
			"SELECT "+sourceColumns+" FROM source WHERE id IN ("+batch.clause+")",
			batch.args...)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			found[src.ID] = src
		}
	}
	if len(ids) > 0 && len(found) == 0 {
		return nil, fmt.Errorf("sources by ids: %w", application.ErrNotFound)
	}
	return found, nil
}

// GetSinksByIDs resolves a batch of surrogate ids, like
// GetThingNodesByIDs.
func (s *Store) GetSinksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Sink, error) {
	found := make(map[uuid.UUID]*domain.Sink, len(ids))
	for _, batch := range s.idBatches(ids) {
		sinks, err := s.querySinks(ctx,
			"SELECT "+sinkColumns+" FROM sink WHERE id IN ("+batch.clause+")",
			batch.args...)
		if err != nil {
			return nil, err
		}
		for _, snk := range sinks {
			found[snk.ID] = snk
		}
	}
	if len(ids) > 0 && len(found) == 0 {
		return nil, fmt.Errorf("sinks by ids: %w", application.ErrNotFound)
	}
	return found, nil
}

// SearchElementTypesByName returns element types whose name contains the
// substring, case-insensitively. An empty substring matches everything.
func (s *Store) SearchElementTypesByName(ctx context.Context, substring string) ([]*domain.ElementType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+elementTypeColumns+" FROM element_type WHERE name LIKE ? ESCAPE '\\' ORDER BY name",
		likePattern(substring))
	if err != nil {
		return nil, classify("search element types", err)
	}
	defer rows.Close()

	var results []*domain.ElementType
	for rows.Next() {
		et, err := scanElementType(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, et)
	}
	return results, rows.Err()
}

// SearchThingNodesByName returns thing nodes whose name contains the
// substring, case-insensitively.
func (s *Store) SearchThingNodesByName(ctx context.Context, substring string) ([]*domain.ThingNode, error) {
	return s.queryThingNodes(ctx,
		"SELECT "+thingNodeColumns+" FROM thing_node WHERE name LIKE ? ESCAPE '\\' ORDER BY name",
		likePattern(substring))
}

// SearchSourcesByName returns sources whose name contains the substring,
// case-insensitively.
func (s *Store) SearchSourcesByName(ctx context.Context, substring string) ([]*domain.Source, error) {
	return s.querySources(ctx,
		"SELECT "+sourceColumns+" FROM source WHERE name LIKE ? ESCAPE '\\' ORDER BY name",
		likePattern(substring))
}

// SearchSinksByName returns sinks whose name contains the substring,
// case-insensitively.
func (s *Store) SearchSinksByName(ctx context.Context, substring string) ([]*domain.Sink, error) {
	return s.querySinks(ctx,
		"SELECT "+sinkColumns+" FROM sink WHERE name LIKE ? ESCAPE '\\' ORDER BY name",
		likePattern(substring))
}

func (s *Store) queryThingNodes(ctx context.Context, query string, args ...any) ([]*domain.ThingNode, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query thing nodes", err)
	}
	defer rows.Close()

	var results []*domain.ThingNode
	for rows.Next() {
		tn, err := scanThingNode(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, tn)
	}
	return results, rows.Err()
}

func (s *Store) querySources(ctx context.Context, query string, args ...any) ([]*domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query sources", err)
	}
	defer rows.Close()

	var results []*domain.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, src)
	}
	return results, rows.Err()
}

func (s *Store) querySinks(ctx context.Context, query string, args ...any) ([]*domain.Sink, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query sinks", err)
	}
	defer rows.Close()

	var results []*domain.Sink
	for rows.Next() {
		snk, err := scanSink(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, snk)
	}
	return results, rows.Err()
}

// idBatches splits ids into batches and renders each as a placeholder
// list with its args.
func (s *Store) idBatches(ids []uuid.UUID) []struct {
	clause string
	args   []any
} {
	var batches []struct {
		clause string
		args   []any
	}
	for start := 0; start < len(ids); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for i, id := range chunk {
			placeholders[i] = "?"
			args[i] = id.String()
		}
		batches = append(batches, struct {
			clause string
			args   []any
		}{clause: strings.Join(placeholders, ", "), args: args})
	}
	return batches
}

// prefixColumns qualifies a comma-separated column list with a table
// alias for use in joins.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// likePattern wraps a substring for a contains-style LIKE match.
func likePattern(substring string) string {
	escaped := strings.NewReplacer("%", `\%`, "_", `\_`).Replace(substring)
	return "%" + escaped + "%"
}
