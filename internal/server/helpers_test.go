package server_test

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/goarena/internal/game"
	"github.com/Tyrowin/goarena/internal/server"
)

const testOrigin = "http://localhost:8080"

// startTestServer runs a hub and an httptest server around a seeded world.
func startTestServer(t *testing.T, mutate func(*server.Config)) (*server.Hub, *httptest.Server) {
	t.Helper()

	cfg := *server.NewConfig()
	cfg.TickInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	world, err := game.NewWorld(cfg.Game.Arena(), game.WithRand(rand.New(rand.NewPCG(5, 6))))
	require.NoError(t, err)

	hub := server.NewHub(world, cfg, server.NewMetrics())
	hub.Start()

	testServer := httptest.NewServer(server.SetupRoutes(hub))
	t.Cleanup(func() {
		testServer.Close()
		assert.NoError(t, hub.Shutdown(2*time.Second))
	})
	return hub, testServer
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
}

// connectWebSocket dials the arena with an allowed Origin header.
func connectWebSocket(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", testOrigin)

	conn, resp, err := dialer.Dial(wsURL(httpURL), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// arenaClient accumulates what one connection has been told.
type arenaClient struct {
	t            *testing.T
	conn         *websocket.Conn
	id           string
	players      map[string]game.PlayerView
	collectibles []game.CollectibleView
	departed     []string
}

func newArenaClient(t *testing.T, httpURL string) *arenaClient {
	t.Helper()
	c := &arenaClient{t: t, conn: connectWebSocket(t, httpURL)}
	c.waitFor(func() bool { return c.id != "" && len(c.players) > 0 })
	return c
}

// readFrame reads one websocket frame and applies every envelope in it.
// It returns the envelope types in order.
func (c *arenaClient) readFrame() []string {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)

	var types []string
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		var env server.Envelope
		require.NoError(c.t, json.Unmarshal(line, &env))
		types = append(types, env.Type)

		switch env.Type {
		case server.EventWelcome:
			var w server.WelcomePayload
			require.NoError(c.t, json.Unmarshal(env.Payload, &w))
			c.id = w.ID
		case server.EventUpdatePlayers:
			c.players = nil
			require.NoError(c.t, json.Unmarshal(env.Payload, &c.players))
		case server.EventUpdateCollectibles:
			c.collectibles = nil
			require.NoError(c.t, json.Unmarshal(env.Payload, &c.collectibles))
		case server.EventPlayerDisconnected:
			var d server.PlayerDisconnectedPayload
			require.NoError(c.t, json.Unmarshal(env.Payload, &d))
			c.departed = append(c.departed, d.ID)
		}
	}
	return types
}

func (c *arenaClient) waitFor(cond func() bool) {
	c.t.Helper()
	for i := 0; i < 50 && !cond(); i++ {
		c.readFrame()
	}
	require.True(c.t, cond(), "condition not reached")
}

func (c *arenaClient) move(direction string, amount float64) {
	c.t.Helper()
	payload, err := json.Marshal(server.MovePayload{Direction: direction, Amount: amount})
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(server.Envelope{Type: server.EventMove, Payload: payload}))
}

func (c *arenaClient) self() game.PlayerView {
	return c.players[c.id]
}
