package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaros/search-service/internal/history"
	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/internal/store"
	"github.com/scholaros/search-service/pkg/types"
)

const (
	testUserID      = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	testWorkspaceID = "11111111-1111-1111-1111-111111111111"
)

type testEnv struct {
	router   *gin.Engine
	history  *history.Store
	recorder *history.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = store.Seed(context.Background(), db)
	require.NoError(t, err)

	historyStore, err := history.NewStore(db, types.HistoryConfig{})
	require.NoError(t, err)

	recorder, err := history.NewRecorder(historyStore, 2, nil)
	require.NoError(t, err)

	engine := search.NewEngine(
		store.NewSources(db, 0),
		historyStore,
		types.DefaultRankingWeights(),
		types.DefaultServiceConfig().Search,
		nil,
	)

	srv := New(engine, historyStore, recorder, nil)
	return &testEnv{router: srv.Router(), history: historyStore, recorder: recorder}
}

func (e *testEnv) do(method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-User-ID", testUserID)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// --- authentication ---

func TestHealthzNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireUser(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed uuid", "not-a-uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/search?q=test", nil)
			if tt.header != "" {
				req.Header.Set("X-User-ID", tt.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "unauthenticated", body["error"])
		})
	}
}

// --- search ---

func TestSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/search?q=NSF+report&workspace_id="+testWorkspaceID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []types.ScoredResult            `json:"results"`
		Grouped map[string][]types.ScoredResult `json:"grouped"`
		Total   int                             `json:"total"`
		Query   string                          `json:"query"`
		Limit   int                             `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "nsf report", body.Query)
	assert.Equal(t, 5, body.Limit)
	require.NotEmpty(t, body.Results)
	// Exact title match ranks first.
	assert.Equal(t, "t-001", body.Results[0].ID)
	assert.Greater(t, body.Results[0].Score, 0.0)

	for _, bucket := range []string{"tasks", "projects", "grants", "publications", "navigation"} {
		_, ok := body.Grouped[bucket]
		assert.True(t, ok, "bucket %q missing", bucket)
	}
	assert.GreaterOrEqual(t, body.Total, len(body.Results))
}

func TestSearchEndpointTypeFilter(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/search?q=nsf&types=grant", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []types.ScoredResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Results)
	for _, r := range body.Results {
		assert.Equal(t, types.ResultTypeGrant, r.Type)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		target string
	}{
		{"missing query", "/api/search"},
		{"blank query", "/api/search?q=%20%20"},
		{"bad type", "/api/search?q=x&types=document"},
		{"non-integer limit", "/api/search?q=x&limit=ten"},
		{"zero limit", "/api/search?q=x&limit=0"},
		{"negative limit", "/api/search?q=x&limit=-1"},
		{"limit too large", "/api/search?q=x&limit=25"},
		{"bad workspace id", "/api/search?q=x&workspace_id=nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "invalid_query", body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestSearchRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/search?q=coral", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Drain the async recorder before reading.
	require.NoError(t, env.recorder.Close())

	recents, err := env.history.Recent(context.Background(), testUserID, history.RecentOptions{})
	require.NoError(t, err)
	require.Len(t, recents, 1)
	assert.Equal(t, "coral", recents[0].NormalizedQuery)
	assert.False(t, recents[0].Selected)
}

// --- history ---

func TestHistoryInsertAndList(t *testing.T) {
	env := newTestEnv(t)
	payload, _ := json.Marshal(map[string]any{
		"query":        "NSF report",
		"workspace_id": testWorkspaceID,
		"result_type":  "task",
		"result_id":    "t-001",
		"result_title": "NSF report",
		"selected":     true,
	})
	w := env.do(http.MethodPost, "/api/search/history", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/search/history?selected_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		History []types.RecentSearch `json:"history"`
		Total   int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "nsf report", body.History[0].NormalizedQuery)
	assert.Equal(t, types.ResultTypeTask, body.History[0].ResultType)
	assert.True(t, body.History[0].Selected)
}

func TestHistoryListEmpty(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/search/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Empty history serializes as [] rather than null.
	assert.Contains(t, w.Body.String(), `"history":[]`)
}

func TestHistoryInsertValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed body", `{"query":`},
		{"empty query", `{"query":"   "}`},
		{"bad result type", `{"query":"ok","result_type":"document"}`},
		{"bad source", `{"query":"ok","source":"cli"}`},
		{"bad workspace id", `{"query":"ok","workspace_id":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/search/history", []byte(tt.payload))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHistoryListValidation(t *testing.T) {
	env := newTestEnv(t)
	for _, target := range []string{
		"/api/search/history?limit=0",
		"/api/search/history?limit=-1",
		"/api/search/history?limit=51",
		"/api/search/history?selected_only=maybe",
	} {
		w := env.do(http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
	}
}

func TestHistoryClear(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		payload, _ := json.Marshal(map[string]any{"query": fmt.Sprintf("query %d", i)})
		w := env.do(http.MethodPost, "/api/search/history", payload)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(http.MethodDelete, "/api/search/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool  `json:"success"`
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(3), body.Deleted)

	w = env.do(http.MethodGet, "/api/search/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
}
