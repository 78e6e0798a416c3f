package sqlite

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structura/internal/application"
)

func TestGetSingleEntities(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	cs := testStructure()
	require.NoError(t, store.Synchronize(ctx, cs))

	t.Run("thing node round trip", func(t *testing.T) {
		tn, err := store.GetThingNode(ctx, cs.ThingNodes[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Main plant", tn.Name)
		assert.Equal(t, "et-plant", tn.ElementTypeExternalID)
		assert.NotEqual(t, uuid.Nil, tn.ElementTypeID)
	})

	t.Run("source round trip", func(t *testing.T) {
		src, err := store.GetSource(ctx, cs.Sources[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Temperature", src.Name)
		assert.Equal(t, "timeseries(float)", src.Type)
		require.Len(t, src.PassthroughFilters, 1)
		assert.Equal(t, "upper_threshold", src.PassthroughFilters[0].InternalName)
		assert.ElementsMatch(t, []string{"tn-unit-a", "tn-unit-b"}, src.ThingNodeExternalID)
	})

	t.Run("sink round trip", func(t *testing.T) {
		snk, err := store.GetSink(ctx, cs.Sinks[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Setpoint", snk.Name)
		assert.Equal(t, "setpoint-1", snk.SinkID)
	})

	t.Run("missing entities yield ErrNotFound", func(t *testing.T) {
		_, err := store.GetThingNode(ctx, uuid.New())
		assert.ErrorIs(t, err, application.ErrNotFound)
		_, err = store.GetSource(ctx, uuid.New())
		assert.ErrorIs(t, err, application.ErrNotFound)
		_, err = store.GetSink(ctx, uuid.New())
		assert.ErrorIs(t, err, application.ErrNotFound)
	})
}

func TestGetByIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	cs := testStructure()
	require.NoError(t, store.Synchronize(ctx, cs))

	t.Run("partial matches are returned", func(t *testing.T) {
		ids := []uuid.UUID{cs.ThingNodes[0].ID, cs.ThingNodes[1].ID, uuid.New()}
		found, err := store.GetThingNodesByIDs(ctx, ids)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("empty input yields empty result", func(t *testing.T) {
		found, err := store.GetSourcesByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("no matches at all yields ErrNotFound", func(t *testing.T) {
		_, err := store.GetSinksByIDs(ctx, []uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, application.ErrNotFound)
	})
}

func TestSearchByName(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	require.NoError(t, store.Synchronize(ctx, testStructure()))

	t.Run("case-insensitive substring", func(t *testing.T) {
		nodes, err := store.SearchThingNodesByName(ctx, "UNIT")
		require.NoError(t, err)
		assert.Len(t, nodes, 2)
	})

	t.Run("element types", func(t *testing.T) {
		ets, err := store.SearchElementTypesByName(ctx, "plant")
		require.NoError(t, err)
		require.Len(t, ets, 1)
		assert.Equal(t, "Plant", ets[0].Name)
	})

	t.Run("no match", func(t *testing.T) {
		sources, err := store.SearchSourcesByName(ctx, "pressure")
		require.NoError(t, err)
		assert.Empty(t, sources)
	})

	t.Run("LIKE wildcards are escaped", func(t *testing.T) {
		sinks, err := store.SearchSinksByName(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, sinks)
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		nodes, err := store.SearchThingNodesByName(ctx, "")
		require.NoError(t, err)
		assert.Len(t, nodes, 3)
	})
}
