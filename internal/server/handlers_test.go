package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/goarena/internal/server"
)

func TestWebSocketHandlerMethodValidation(t *testing.T) {
	hub, _ := startTestServer(t, nil)
	handler := server.WebSocketHandler(hub)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method+" request should be rejected", func(t *testing.T) {
			req := httptest.NewRequest(method, "/ws", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			resp := w.Result()
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
			assert.Equal(t, "Method not allowed. WebSocket endpoint only accepts GET requests.", strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestWebSocketHandlerGETWithoutUpgrade(t *testing.T) {
	hub, _ := startTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()

	server.WebSocketHandler(hub)(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, hub.World().PlayerCount())
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	server.HealthHandler(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Arena server is running!", w.Body.String())
}

func TestPlayPageHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/play", nil)
	w := httptest.NewRecorder()

	server.PlayPageHandler(w, req)

	assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<canvas")
	assert.Contains(t, body, "'/ws'")
}

func TestLeaderboardHandler(t *testing.T) {
	hub, testServer := startTestServer(t, func(cfg *server.Config) {
		cfg.Game.ArenaWidth = 60
		cfg.Game.ArenaHeight = 60
		cfg.Game.CollectibleSize = 10
		cfg.Game.TargetCollectibles = 1
	})

	idle := newArenaClient(t, testServer.URL)
	scorer := newArenaClient(t, testServer.URL)
	scorer.move("right", 50)
	scorer.waitFor(func() bool { return scorer.self().Score == 1 })

	resp, err := http.Get(testServer.URL + "/leaderboard")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var entries []server.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, server.LeaderboardEntry{Rank: 1, ID: scorer.id, Score: 1}, entries[0])
	assert.Equal(t, server.LeaderboardEntry{Rank: 2, ID: idle.id, Score: 0}, entries[1])

	ordinal, total := hub.World().Rank(idle.id)
	assert.Equal(t, 2, ordinal)
	assert.Equal(t, 2, total)
}

func TestLeaderboardHandlerRejectsPost(t *testing.T) {
	_, testServer := startTestServer(t, nil)

	resp, err := http.Post(testServer.URL+"/leaderboard", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, testServer := startTestServer(t, nil)
	newArenaClient(t, testServer.URL)

	resp, err := http.Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "arena_hub_broadcasts_total")
	assert.Contains(t, string(body), "arena_hub_players_connected 1")
}

func TestMetricsEndpointDisabled(t *testing.T) {
	_, testServer := startTestServer(t, func(cfg *server.Config) {
		cfg.Metrics.Enabled = false
	})

	resp, err := http.Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// falls through to the health handler
	assert.Equal(t, "Arena server is running!", string(body))
}
