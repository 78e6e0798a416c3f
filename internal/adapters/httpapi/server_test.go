package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structura/internal/adapters/sqlite"
	"structura/internal/domain"
)

const seedDocument = `{
	"element_types": [
		{"external_id": "et-plant", "stakeholder_key": "ACME", "name": "Plant"},
		{"external_id": "et-unit", "stakeholder_key": "ACME", "name": "Unit"}
	],
	"thing_nodes": [
		{"external_id": "tn-plant", "stakeholder_key": "ACME", "name": "Main plant",
		 "element_type_external_id": "et-plant"},
		{"external_id": "tn-unit", "stakeholder_key": "ACME", "name": "Boiler unit",
		 "parent_external_node_id": "tn-plant", "element_type_external_id": "et-unit"}
	],
	"sources": [
		{"external_id": "src-temp", "stakeholder_key": "ACME", "name": "Temperature",
		 "type": "timeseries(float)", "visible": true, "display_path": "Main plant",
		 "adapter_key": "demo", "source_id": "temp-1", "ref_id": "temp-1",
		 "preset_filters": {},
		 "passthrough_filters": [{"name": "Upper Threshold", "type": "free_text", "required": false}],
		 "thing_node_external_ids": ["tn-plant"]}
	],
	"sinks": [
		{"external_id": "snk-setpoint", "stakeholder_key": "ACME", "name": "Setpoint",
		 "type": "timeseries(float)", "visible": true, "display_path": "Main plant",
		 "adapter_key": "demo", "sink_id": "setpoint-1", "ref_id": "setpoint-1",
		 "preset_filters": {},
		 "thing_node_external_ids": ["tn-plant"]}
	]
}`

func newTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), sqlite.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewServer(store, nil), store
}

func seed(t *testing.T, store *sqlite.Store) *domain.CompleteStructure {
	t.Helper()
	cs, err := domain.ParseCompleteStructure([]byte(seedDocument))
	require.NoError(t, err)
	require.NoError(t, store.Synchronize(t.Context(), cs))
	return cs
}

func TestInfoEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapters/vst/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var info infoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "vst", info.ID)
}

func TestStructureEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	cs := seed(t, store)

	t.Run("root level", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapters/vst/structure", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp structureResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.ThingNodes, 1)
		assert.Equal(t, "Main plant", resp.ThingNodes[0].Name)
		assert.Nil(t, resp.ThingNodes[0].ParentID)
		assert.Empty(t, resp.Sources)
		assert.Empty(t, resp.Sinks)
	})

	t.Run("child level with attached sources and sinks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		url := fmt.Sprintf("/adapters/vst/structure?parentId=%s", cs.ThingNodes[0].ID)
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp structureResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.ThingNodes, 1)
		assert.Equal(t, "Boiler unit", resp.ThingNodes[0].Name)
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, "Temperature", resp.Sources[0].Name)
		assert.Contains(t, resp.Sources[0].Filters, "upper_threshold")
		require.Len(t, resp.Sinks, 1)
	})

	t.Run("unknown parent yields 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		url := "/adapters/vst/structure?parentId=11111111-2222-3333-4444-555555555555"
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed parent id yields 422", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapters/vst/structure?parentId=nope", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestSingleEntityEndpoints(t *testing.T) {
	server, store := newTestServer(t)
	cs := seed(t, store)

	t.Run("thing node", func(t *testing.T) {
		rec := httptest.NewRecorder()
		url := fmt.Sprintf("/adapters/vst/thingNodes/%s", cs.ThingNodes[1].ID)
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var dto thingNodeDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "Boiler unit", dto.Name)
		require.NotNil(t, dto.ParentID)
		assert.Equal(t, cs.ThingNodes[0].ID, *dto.ParentID)
	})

	t.Run("source", func(t *testing.T) {
		rec := httptest.NewRecorder()
		url := fmt.Sprintf("/adapters/vst/sources/%s", cs.Sources[0].ID)
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var dto sourceDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, cs.Sources[0].ID, dto.ThingNodeID)
		assert.Equal(t, "Main plant", dto.Path)
	})

	t.Run("missing sink yields 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		url := "/adapters/vst/sinks/11111111-2222-3333-4444-555555555555"
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("metadata endpoints return empty lists", func(t *testing.T) {
		rec := httptest.NewRecorder()
		url := fmt.Sprintf("/adapters/vst/thingNodes/%s/metadata/", cs.ThingNodes[0].ID)
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestFilteredListEndpoints(t *testing.T) {
	server, store := newTestServer(t)
	seed(t, store)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapters/vst/sources?filter=temp", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp multipleSourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ResultCount)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapters/vst/sinks?filter=nomatch", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var sinks multipleSinksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sinks))
	assert.Equal(t, 0, sinks.ResultCount)
}

func TestUpdateEndpoint(t *testing.T) {
	t.Run("accepts a valid document", func(t *testing.T) {
		server, store := newTestServer(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/structure/update", strings.NewReader(seedDocument))
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		empty, err := store.IsEmpty(t.Context())
		require.NoError(t, err)
		assert.False(t, empty)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		server, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/structure/update", strings.NewReader("{not json"))
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("rejects an invalid document", func(t *testing.T) {
		server, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/structure/update",
			strings.NewReader(`{"element_types": [], "thing_nodes": [], "sources": [], "sinks": []}`))
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("delete_existing_structure=false merges", func(t *testing.T) {
		server, store := newTestServer(t)
		seed(t, store)

		extra := `{
			"element_types": [
				{"external_id": "et-extra", "stakeholder_key": "OTHER", "name": "Extra"}
			],
			"thing_nodes": [
				{"external_id": "tn-extra", "stakeholder_key": "OTHER", "name": "Extra node",
				 "element_type_external_id": "et-extra"}
			],
			"sources": [], "sinks": []
		}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut,
			"/structure/update?delete_existing_structure=false", strings.NewReader(extra))
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		nodes, err := store.SearchThingNodesByName(t.Context(), "")
		require.NoError(t, err)
		assert.Len(t, nodes, 3)
	})

	t.Run("delete_existing_structure=true replaces", func(t *testing.T) {
		server, store := newTestServer(t)
		seed(t, store)

		replacement := `{
			"element_types": [
				{"external_id": "et-solo", "stakeholder_key": "ACME", "name": "Solo"}
			],
			"thing_nodes": [
				{"external_id": "tn-solo", "stakeholder_key": "ACME", "name": "Solo node",
				 "element_type_external_id": "et-solo"}
			],
			"sources": [], "sinks": []
		}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/structure/update", strings.NewReader(replacement))
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		nodes, err := store.SearchThingNodesByName(t.Context(), "")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "Solo node", nodes[0].Name)
	})
}
