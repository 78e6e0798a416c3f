package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"structura/internal/domain"
)

// Synchronize reconciles a complete structure document against the
// store. Validation runs first, outside any transaction; everything
// else happens inside a single transaction so a mid-flight failure
// leaves the previous catalog state untouched.
func (s *Store) Synchronize(ctx context.Context, structure *domain.CompleteStructure) error {
	structure.Normalize()
	if err := structure.Validate(); err != nil {
		return err
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("synchronize", err)
	}
	defer tx.Rollback()

	if err := s.synchronizeTx(ctx, tx, structure); err != nil {
		return classify("synchronize", err)
	}
	if err := tx.Commit(); err != nil {
		return classify("synchronize", err)
	}

	s.log.Info("structure synchronized",
		"element_types", len(structure.ElementTypes),
		"thing_nodes", len(structure.ThingNodes),
		"sources", len(structure.Sources),
		"sinks", len(structure.Sinks),
		"duration", time.Since(start))
	return nil
}

func (s *Store) synchronizeTx(ctx context.Context, q querier, structure *domain.CompleteStructure) error {
	// Element types first: thing nodes reference them.
	etKeys := make([]domain.NaturalKey, 0, len(structure.ElementTypes))
	for _, et := range structure.ElementTypes {
		etKeys = append(etKeys, et.Key())
	}
	existingETs, err := s.fetchElementTypes(ctx, q, etKeys)
	if err != nil {
		return err
	}
	if err := s.upsertElementTypes(ctx, q, structure.ElementTypes, existingETs); err != nil {
		return err
	}
	storedETs, err := s.fetchElementTypes(ctx, q, etKeys)
	if err != nil {
		return err
	}
	etIDs := make(map[domain.NaturalKey]uuid.UUID, len(storedETs))
	for key, et := range storedETs {
		etIDs[key] = et.ID
	}

	// Thing nodes adopt existing ids, get level-ordered and written
	// parent-before-child.
	tnKeys := make([]domain.NaturalKey, 0, len(structure.ThingNodes))
	for _, tn := range structure.ThingNodes {
		tnKeys = append(tnKeys, tn.Key())
	}
	existingTNs, err := s.fetchThingNodes(ctx, q, tnKeys)
	if err != nil {
		return err
	}
	existingTNIDs := make(map[domain.NaturalKey]uuid.UUID, len(existingTNs))
	for key, tn := range existingTNs {
		existingTNIDs[key] = tn.ID
	}
	sorted := domain.SortThingNodes(structure.ThingNodes, existingTNIDs)
	if err := s.upsertThingNodes(ctx, q, sorted, etIDs); err != nil {
		return err
	}
	storedTNs, err := s.fetchThingNodes(ctx, q, tnKeys)
	if err != nil {
		return err
	}
	nodeIDs := make(map[domain.NaturalKey]uuid.UUID, len(storedTNs))
	for key, tn := range storedTNs {
		nodeIDs[key] = tn.ID
	}

	srcKeys := make([]domain.NaturalKey, 0, len(structure.Sources))
	for _, src := range structure.Sources {
		srcKeys = append(srcKeys, src.Key())
	}
	existingSrcs, err := s.fetchSources(ctx, q, srcKeys)
	if err != nil {
		return err
	}
	if err := s.upsertSources(ctx, q, structure.Sources, existingSrcs); err != nil {
		return err
	}

	snkKeys := make([]domain.NaturalKey, 0, len(structure.Sinks))
	for _, snk := range structure.Sinks {
		snkKeys = append(snkKeys, snk.Key())
	}
	existingSnks, err := s.fetchSinks(ctx, q, snkKeys)
	if err != nil {
		return err
	}
	if err := s.upsertSinks(ctx, q, structure.Sinks, existingSnks); err != nil {
		return err
	}

	// Associations last: both endpoints exist by now.
	if err := s.reconcileSourceAssociations(ctx, q, structure.Sources, nodeIDs); err != nil {
		return err
	}
	return s.reconcileSinkAssociations(ctx, q, structure.Sinks, nodeIDs)
}

// Wipe deletes the whole catalog, associations before the entities they
// reference, nodes before the element types they reference.
func (s *Store) Wipe(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("wipe", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"thingnode_source_association",
		"thingnode_sink_association",
		"source",
		"sink",
		"thing_node",
		"element_type",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return classify("wipe", fmt.Errorf("clearing %s: %w", table, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return classify("wipe", err)
	}
	s.log.Info("structure wiped")
	return nil
}

// IsEmpty reports whether all four entity tables hold zero rows.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	const query = `SELECT NOT (
		EXISTS (SELECT 1 FROM element_type)
		OR EXISTS (SELECT 1 FROM thing_node)
		OR EXISTS (SELECT 1 FROM source)
		OR EXISTS (SELECT 1 FROM sink))`
	var empty bool
	if err := s.db.QueryRowContext(ctx, query).Scan(&empty); err != nil {
		return false, classify("is empty", err)
	}
	return empty, nil
}
