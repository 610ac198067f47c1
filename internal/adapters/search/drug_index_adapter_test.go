package search

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	tsclient "github.com/drugreco/drugreco/backend/internal/infrastructure/clients/typesense"
	"github.com/drugreco/drugreco/backend/pkg/config"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*DrugIndexAdapter, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
			return
		}
		handler(w, r)
	}))

	client, err := tsclient.NewClient(&config.TypesenseConfig{
		URL:    server.URL,
		APIKey: "test-key",
	})
	require.NoError(t, err)

	return NewDrugIndexAdapter(client), server
}

func TestIndexBatchUpsertsInBulk(t *testing.T) {
	var gotAction, gotBatchSize string
	var gotBody []byte

	adapter, server := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/collections/drugs/documents/import", r.URL.Path)
		gotAction = r.URL.Query().Get("action")
		gotBatchSize = r.URL.Query().Get("batch_size")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("{\"success\":true}\n{\"success\":true}\n"))
	})
	defer server.Close()

	err := adapter.IndexBatch(context.Background(), []*entities.Drug{
		{ID: "d1", Name: "Ecosprin 75", Category: "Cardiovascular", IsActive: true},
		{ID: "d2", Name: "Warf 5", Category: "Anticoagulant", IsActive: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "upsert", gotAction)
	assert.Equal(t, "2", gotBatchSize)
	assert.Len(t, bytes.Split(bytes.TrimSpace(gotBody), []byte("\n")), 2)
}

func TestIndexBatchEmptyCatalogSkipsRequest(t *testing.T) {
	importCalls := 0

	adapter, server := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		importCalls++
		w.Write([]byte("{\"success\":true}\n"))
	})
	defer server.Close()

	err := adapter.IndexBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, importCalls)
}

func TestSuggestSearchesActiveDrugsByName(t *testing.T) {
	adapter, server := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/drugs/documents/search", r.URL.Path)
		assert.Equal(t, "dolo", r.URL.Query().Get("q"))
		assert.Equal(t, "name", r.URL.Query().Get("query_by"))
		assert.Equal(t, "is_active:=true", r.URL.Query().Get("filter_by"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"found": 1,
			"hits": [
				{"document": {
					"id": "d4",
					"name": "Dolo 650",
					"category": "Pain Relief",
					"manufacturer": "Micro Labs Ltd",
					"is_active": true
				}}
			]
		}`))
	})
	defer server.Close()

	drugs, err := adapter.Suggest(context.Background(), "dolo", 5)
	require.NoError(t, err)
	require.Len(t, drugs, 1)

	assert.Equal(t, "d4", drugs[0].ID)
	assert.Equal(t, "Dolo 650", drugs[0].Name)
	assert.Equal(t, "Pain Relief", drugs[0].Category)
	assert.Equal(t, "Micro Labs Ltd", drugs[0].Manufacturer)
	assert.True(t, drugs[0].IsActive)
}
