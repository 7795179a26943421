package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade/internal/aggregate"
	"arcade/pkg/logger"
)

type stubSource struct {
	basic     []aggregate.BasicGame
	full      []aggregate.FullGame
	game      aggregate.FullGame
	err       error
	lastLimit int
	lastFull  bool
}

func (s *stubSource) ListBasic(ctx context.Context, limit int) ([]aggregate.BasicGame, error) {
	s.lastLimit, s.lastFull = limit, false
	return s.basic, s.err
}

func (s *stubSource) ListFull(ctx context.Context, limit int) ([]aggregate.FullGame, error) {
	s.lastLimit, s.lastFull = limit, true
	return s.full, s.err
}

func (s *stubSource) Get(ctx context.Context, gameID string) (aggregate.FullGame, error) {
	return s.game, s.err
}

func newTestServer(source GameSource) *httptest.Server {
	srv := New(":0", source, logger.NewNop())
	return httptest.NewServer(srv.Handler())
}

func TestListBasicEndpoint(t *testing.T) {
	source := &stubSource{basic: []aggregate.BasicGame{{ID: "g1", Name: "Pong"}}}
	ts := newTestServer(source)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, source.lastLimit)
	assert.False(t, source.lastFull)

	var got []aggregate.BasicGame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Pong", got[0].Name)
}

func TestListFullEndpoint(t *testing.T) {
	source := &stubSource{full: []aggregate.FullGame{}}
	ts := newTestServer(source)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games?full=true")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, source.lastFull)
	assert.Equal(t, 100, source.lastLimit, "limit defaults to 100")
}

func TestListInvalidLimit(t *testing.T) {
	ts := newTestServer(&stubSource{})
	defer ts.Close()

	for _, limit := range []string{"0", "1001", "-3", "abc"} {
		resp, err := http.Get(ts.URL + "/api/games?limit=" + limit)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit %q", limit)
	}
}

func TestListAggregationFailure(t *testing.T) {
	source := &stubSource{err: errors.New("upstream down")}
	ts := newTestServer(source)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "aggregation failed", body["message"])
}

func TestGetEndpoint(t *testing.T) {
	source := &stubSource{game: aggregate.FullGame{BasicGame: aggregate.BasicGame{ID: "g1"}}}
	ts := newTestServer(source)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games/g1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetNotFound(t *testing.T) {
	source := &stubSource{err: aggregate.ErrNotFound}
	ts := newTestServer(source)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/games/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(&stubSource{})
	defer ts.Close()

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
	}
}
