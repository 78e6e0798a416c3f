package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structura/internal/application"
	"structura/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func testStructure() *domain.CompleteStructure {
	cs := &domain.CompleteStructure{
		ElementTypes: []*domain.ElementType{
			{ExternalID: "et-plant", StakeholderKey: "ACME", Name: "Plant"},
			{ExternalID: "et-unit", StakeholderKey: "ACME", Name: "Unit"},
		},
		ThingNodes: []*domain.ThingNode{
			{
				ExternalID:            "tn-plant",
				StakeholderKey:        "ACME",
				Name:                  "Main plant",
				ElementTypeExternalID: "et-plant",
				MetaData:              map[string]any{"location": "north"},
			},
			{
				ExternalID:            "tn-unit-b",
				StakeholderKey:        "ACME",
				Name:                  "Unit B",
				ParentExternalNodeID:  strPtr("tn-plant"),
				ElementTypeExternalID: "et-unit",
			},
			{
				ExternalID:            "tn-unit-a",
				StakeholderKey:        "ACME",
				Name:                  "Unit A",
				ParentExternalNodeID:  strPtr("tn-plant"),
				ElementTypeExternalID: "et-unit",
			},
		},
		Sources: []*domain.Source{
			{
				ExternalID:     "src-temp",
				StakeholderKey: "ACME",
				Name:           "Temperature",
				Type:           "timeseries(float)",
				Visible:        true,
				DisplayPath:    "Main plant",
				AdapterKey:     "demo",
				SourceID:       "temp-1",
				RefID:          "temp-1",
				PresetFilters:  map[string]any{},
				PassthroughFilters: []domain.Filter{
					{Name: "Upper Threshold", Type: domain.FilterTypeFreeText},
				},
				ThingNodeExternalID: []string{"tn-unit-a", "tn-unit-b"},
			},
		},
		Sinks: []*domain.Sink{
			{
				ExternalID:          "snk-setpoint",
				StakeholderKey:      "ACME",
				Name:                "Setpoint",
				Type:                "timeseries(float)",
				Visible:             true,
				DisplayPath:         "Main plant",
				AdapterKey:          "demo",
				SinkID:              "setpoint-1",
				RefID:               "setpoint-1",
				PresetFilters:       map[string]any{},
				ThingNodeExternalID: []string{"tn-unit-a"},
			},
		},
	}
	cs.Normalize()
	return cs
}

func TestSynchronizeFromEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	cs := testStructure()
	require.NoError(t, store.Synchronize(ctx, cs))

	empty, err = store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)

	roots, err := store.GetChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roots.ThingNodes, 1)
	root := roots.ThingNodes[0]
	assert.Equal(t, "Main plant", root.Name)
	assert.Nil(t, root.ParentNodeID)
	assert.Equal(t, map[string]any{"location": "north"}, root.MetaData)

	level, err := store.GetChildren(ctx, &root.ID)
	require.NoError(t, err)
	require.Len(t, level.ThingNodes, 2)
	// children ordered by external id
	assert.Equal(t, "tn-unit-a", level.ThingNodes[0].ExternalID)
	assert.Equal(t, "tn-unit-b", level.ThingNodes[1].ExternalID)
	for _, tn := range level.ThingNodes {
		require.NotNil(t, tn.ParentNodeID)
		assert.Equal(t, root.ID, *tn.ParentNodeID)
	}
	assert.Empty(t, level.Sources)
	assert.Empty(t, level.Sinks)

	unitA := level.ThingNodes[0]
	leaf, err := store.GetChildren(ctx, &unitA.ID)
	require.NoError(t, err)
	assert.Empty(t, leaf.ThingNodes)
	require.Len(t, leaf.Sources, 1)
	assert.Equal(t, "Temperature", leaf.Sources[0].Name)
	require.Len(t, leaf.Sinks, 1)
	assert.Equal(t, "Setpoint", leaf.Sinks[0].Name)
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	first := testStructure()
	require.NoError(t, store.Synchronize(ctx, first))

	roots, err := store.GetChildren(ctx, nil)
	require.NoError(t, err)
	firstRootID := roots.ThingNodes[0].ID

	// A second document with fresh surrogate ids must adopt the stored
	// ones instead of duplicating rows.
	second := testStructure()
	second.ThingNodes[0].Description = "updated"
	require.NoError(t, store.Synchronize(ctx, second))

	roots, err = store.GetChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roots.ThingNodes, 1)
	assert.Equal(t, firstRootID, roots.ThingNodes[0].ID)
	assert.Equal(t, "updated", roots.ThingNodes[0].Description)

	nodes, err := store.SearchThingNodesByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestSynchronizeReconcilesAssociations(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	cs := testStructure()
	require.NoError(t, store.Synchronize(ctx, cs))

	// Move the sink from unit A to unit B.
	update := testStructure()
	update.Sinks[0].ThingNodeExternalID = []string{"tn-unit-b"}
	require.NoError(t, store.Synchronize(ctx, update))

	roots, err := store.GetChildren(ctx, nil)
	require.NoError(t, err)
	level, err := store.GetChildren(ctx, &roots.ThingNodes[0].ID)
	require.NoError(t, err)

	unitA, unitB := level.ThingNodes[0], level.ThingNodes[1]
	levelA, err := store.GetChildren(ctx, &unitA.ID)
	require.NoError(t, err)
	assert.Empty(t, levelA.Sinks)

	levelB, err := store.GetChildren(ctx, &unitB.ID)
	require.NoError(t, err)
	require.Len(t, levelB.Sinks, 1)
	assert.Equal(t, "Setpoint", levelB.Sinks[0].Name)
}

func TestSynchronizeRejectsInvalidDocument(t *testing.T) {
	store := newTestStore(t)

	cs := &domain.CompleteStructure{
		ThingNodes: []*domain.ThingNode{
			{ExternalID: "tn-1", StakeholderKey: "ACME", Name: "Node", ElementTypeExternalID: "et-missing"},
		},
	}
	err := store.Synchronize(t.Context(), cs)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	empty, err := store.IsEmpty(t.Context())
	require.NoError(t, err)
	assert.True(t, empty, "a rejected document must not leave partial state")
}

func TestSynchronizeKeepsEntitiesOmittedFromDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	full := &domain.CompleteStructure{
		ElementTypes: []*domain.ElementType{
			{ExternalID: "et", StakeholderKey: "ACME", Name: "Type"},
		},
		ThingNodes: []*domain.ThingNode{
			{ExternalID: "root", StakeholderKey: "ACME", Name: "Root", ElementTypeExternalID: "et"},
			{ExternalID: "mid", StakeholderKey: "ACME", Name: "Mid", ParentExternalNodeID: strPtr("root"), ElementTypeExternalID: "et"},
			{ExternalID: "leaf", StakeholderKey: "ACME", Name: "Leaf", ParentExternalNodeID: strPtr("mid"), ElementTypeExternalID: "et"},
		},
		Sources: []*domain.Source{
			{
				ExternalID:          "src",
				StakeholderKey:      "ACME",
				Name:                "Pressure",
				Type:                "timeseries(float)",
				Visible:             true,
				DisplayPath:         "Root / Mid / Leaf",
				AdapterKey:          "demo",
				SourceID:            "press-1",
				RefID:               "press-1",
				PresetFilters:       map[string]any{},
				ThingNodeExternalID: []string{"leaf"},
			},
		},
	}
	full.Normalize()
	require.NoError(t, store.Synchronize(ctx, full))

	// Re-sync with the leaf and its source omitted. Without a wipe the
	// store only merges: nothing is deleted implicitly.
	partial := &domain.CompleteStructure{
		ElementTypes: []*domain.ElementType{
			{ExternalID: "et", StakeholderKey: "ACME", Name: "Type"},
		},
		ThingNodes: []*domain.ThingNode{
			{ExternalID: "root", StakeholderKey: "ACME", Name: "Root", ElementTypeExternalID: "et"},
			{ExternalID: "mid", StakeholderKey: "ACME", Name: "Mid", ParentExternalNodeID: strPtr("root"), ElementTypeExternalID: "et"},
		},
	}
	partial.Normalize()
	require.NoError(t, store.Synchronize(ctx, partial))

	roots, err := store.GetChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roots.ThingNodes, 1)
	midLevel, err := store.GetChildren(ctx, &roots.ThingNodes[0].ID)
	require.NoError(t, err)
	require.Len(t, midLevel.ThingNodes, 1)

	leafLevel, err := store.GetChildren(ctx, &midLevel.ThingNodes[0].ID)
	require.NoError(t, err)
	require.Len(t, leafLevel.ThingNodes, 1, "omitted leaf must survive the merge")
	leaf := leafLevel.ThingNodes[0]
	assert.Equal(t, "leaf", leaf.ExternalID)

	attached, err := store.GetChildren(ctx, &leaf.ID)
	require.NoError(t, err)
	require.Len(t, attached.Sources, 1, "the leaf's source association must survive the merge")
	assert.Equal(t, "Pressure", attached.Sources[0].Name)
}

func TestSynchronizeRollsBackOnConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Synchronize(ctx, testStructure()))

	// The second element type reuses a name already taken by the ACME
	// structure. Its upsert fails mid-transaction, so the first element
	// type written in the same call must be rolled back with it.
	conflicting := &domain.CompleteStructure{
		ElementTypes: []*domain.ElementType{
			{ExternalID: "et-other", StakeholderKey: "OTHER", Name: "Other Type"},
			{ExternalID: "et-dup", StakeholderKey: "OTHER", Name: "Plant"},
		},
	}
	conflicting.Normalize()

	err := store.Synchronize(ctx, conflicting)
	var cerr *application.ConflictError
	require.ErrorAs(t, err, &cerr)

	others, err := store.SearchElementTypesByName(ctx, "Other Type")
	require.NoError(t, err)
	assert.Empty(t, others, "writes preceding the failed upsert must not be visible")

	nodes, err := store.SearchThingNodesByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, nodes, 3, "the previously synchronized structure must be intact")
}

func TestSynchronizeRejectsDuplicateSourceName(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Synchronize(ctx, testStructure()))

	dup := &domain.CompleteStructure{
		ElementTypes: []*domain.ElementType{
			{ExternalID: "et-other", StakeholderKey: "OTHER", Name: "Other Type"},
		},
		Sources: []*domain.Source{
			{
				ExternalID:     "src-other",
				StakeholderKey: "OTHER",
				Name:           "Temperature",
				Type:           "timeseries(float)",
				Visible:        true,
				DisplayPath:    "Elsewhere",
				AdapterKey:     "demo",
				SourceID:       "temp-2",
				RefID:          "temp-2",
				PresetFilters:  map[string]any{},
			},
		},
	}
	dup.Normalize()

	err := store.Synchronize(ctx, dup)
	var cerr *application.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestWipe(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Synchronize(ctx, testStructure()))
	require.NoError(t, store.Wipe(ctx))

	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	// Wiping an empty store is fine.
	require.NoError(t, store.Wipe(ctx))
}

func TestSynchronizeLargeBatch(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), Options{BatchSize: 10})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := t.Context()

	cs := &domain.CompleteStructure{
		ElementTypes: []*domain.ElementType{
			{ExternalID: "et", StakeholderKey: "ACME", Name: "Type"},
		},
	}
	for i := 0; i < 35; i++ {
		cs.ThingNodes = append(cs.ThingNodes, &domain.ThingNode{
			ExternalID:            uuid.NewString(),
			StakeholderKey:        "ACME",
			Name:                  "Node " + uuid.NewString(),
			ElementTypeExternalID: "et",
		})
	}
	cs.Normalize()

	require.NoError(t, store.Synchronize(ctx, cs))
	require.NoError(t, store.Synchronize(ctx, cs))

	nodes, err := store.SearchThingNodesByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, nodes, 35)
}
