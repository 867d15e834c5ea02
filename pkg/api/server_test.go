package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid_router/pkg/grid"
	"grid_router/pkg/pathfind"
)

func newTestServer(t *testing.T, cfg ServerConfig) *httptest.Server {
	t.Helper()
	g, err := grid.New(grid.Config{Width: 5, Height: 5, CellSize: 1})
	require.NoError(t, err)
	srv := httptest.NewServer(NewMux(cfg, NewHandlers(pathfind.NewEngine(g))))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServerPathAndCells(t *testing.T) {
	srv := newTestServer(t, ServerConfig{CORSOrigin: "*"})

	resp := post(t, srv.URL+"/api/v1/path", `{"start":{"x":0.5,"y":0,"z":0.5},"end":{"x":4.5,"y":0,"z":4.5}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var p PathResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, 56, p.Cost)
	assert.Len(t, p.Waypoints, 5)

	// Wall off the goal corner and the same query fails.
	for _, c := range [][2]int{{3, 3}, {4, 3}, {3, 4}} {
		resp := post(t, srv.URL+"/api/v1/cells", fmt.Sprintf(`{"x":%d,"y":%d,"walkable":false}`, c[0], c[1]))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp = post(t, srv.URL+"/api/v1/path", `{"start":{"x":0.5,"y":0,"z":0.5},"end":{"x":4.5,"y":0,"z":4.5}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	stats, err := http.Get(srv.URL + "/api/v1/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	var s StatsResponse
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&s))
	assert.Equal(t, StatsResponse{Width: 5, Height: 5, CellSize: 1, WalkableCells: 22, Regions: 2}, s)
}

func TestServerMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	resp, err := http.Get(srv.URL + "/api/v1/path")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMiddlewareRejectsWhenSaturated(t *testing.T) {
	sem := make(chan struct{}, 1)
	sem <- struct{}{}
	h := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran while the limiter was full")
	}, sem, ServerConfig{})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestMiddlewareRecoversPanics(t *testing.T) {
	sem := make(chan struct{}, 1)
	h := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, sem, ServerConfig{})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, sem, 0, "slot released after panic")
}

func TestMiddlewareSetsDeadline(t *testing.T) {
	sem := make(chan struct{}, 1)
	h := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		assert.True(t, ok)
		assert.NoError(t, r.Context().Err())
	}, sem, ServerConfig{})

	h(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil).WithContext(context.Background()))
}
