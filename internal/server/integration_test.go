package server_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/goarena/internal/server"
)

func tinyArena(cfg *server.Config) {
	cfg.Game.ArenaWidth = 60
	cfg.Game.ArenaHeight = 60
	cfg.Game.PlayerSize = 50
	cfg.Game.CollectibleSize = 10
	cfg.Game.TargetCollectibles = 1
}

func TestClientsReceiveFullState(t *testing.T) {
	_, testServer := startTestServer(t, nil)

	a := newArenaClient(t, testServer.URL)
	b := newArenaClient(t, testServer.URL)

	a.waitFor(func() bool { _, ok := a.players[b.id]; return ok })

	assert.NotEqual(t, a.id, b.id)
	assert.Len(t, a.players, 2)
	assert.Len(t, a.collectibles, 2)
	assert.Len(t, b.collectibles, 2)
	for _, p := range a.players {
		assert.Zero(t, p.Score)
	}
}

func TestMoveIsBroadcastToOtherClients(t *testing.T) {
	_, testServer := startTestServer(t, func(cfg *server.Config) {
		cfg.Game.TargetCollectibles = 0
	})

	watcher := newArenaClient(t, testServer.URL)
	mover := newArenaClient(t, testServer.URL)
	watcher.waitFor(func() bool { _, ok := watcher.players[mover.id]; return ok })

	start := watcher.players[mover.id]
	wantY := start.Y + 50
	if wantY > 550 {
		wantY = 550
	}

	mover.move("down", 50)
	watcher.waitFor(func() bool { return watcher.players[mover.id].Y == wantY })
	assert.Equal(t, start.X, watcher.players[mover.id].X)
}

func TestPickupArrivesWithCollectibleRemoval(t *testing.T) {
	_, testServer := startTestServer(t, tinyArena)

	c := newArenaClient(t, testServer.URL)
	require.Len(t, c.collectibles, 1)
	picked := c.collectibles[0].ID

	c.move("right", 50)
	for i := 0; i < 50 && c.self().Score == 0; i++ {
		c.readFrame()
		if c.self().Score == 1 {
			for _, item := range c.collectibles {
				assert.NotEqual(t, picked, item.ID, "score changed while the collectible was still live")
			}
		}
	}

	assert.Equal(t, 1, c.self().Score)
	assert.Equal(t, 10.0, c.self().X)
	assert.Len(t, c.collectibles, 1)
}

func TestDisconnectRemovesPlayer(t *testing.T) {
	hub, testServer := startTestServer(t, nil)

	a := newArenaClient(t, testServer.URL)
	b := newArenaClient(t, testServer.URL)
	b.waitFor(func() bool { return len(b.players) == 2 })

	require.NoError(t, a.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.NoError(t, a.conn.Close())

	b.waitFor(func() bool { _, ok := b.players[a.id]; return !ok })
	assert.Contains(t, b.departed, a.id)
	assert.Eventually(t, func() bool { return hub.World().PlayerCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestInvalidMessagesAreIgnored(t *testing.T) {
	_, testServer := startTestServer(t, func(cfg *server.Config) {
		cfg.Game.TargetCollectibles = 0
	})

	c := newArenaClient(t, testServer.URL)
	start := c.self()

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, c.conn.WriteJSON(server.Envelope{Type: "teleport"}))
	require.NoError(t, c.conn.WriteJSON(server.Envelope{Type: server.EventMove}))
	c.move("sideways", 50)
	c.move("up", 50)

	wantY := start.Y - 50
	if wantY < 0 {
		wantY = 0
	}
	c.waitFor(func() bool { return c.self().Y == wantY })
	assert.Equal(t, start.X, c.self().X)
}

func TestDisallowedOriginIsRejected(t *testing.T) {
	hub, testServer := startTestServer(t, nil)

	headers := http.Header{}
	headers.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(testServer.URL), headers)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.World().PlayerCount())
}

func TestOversizedMessageClosesConnection(t *testing.T) {
	hub, testServer := startTestServer(t, func(cfg *server.Config) {
		cfg.MaxMessageSize = 64
	})

	c := newArenaClient(t, testServer.URL)
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, make([]byte, 1024)))

	assert.Eventually(t, func() bool { return hub.World().PlayerCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubShutdownClosesConnections(t *testing.T) {
	hub, testServer := startTestServer(t, nil)

	c := newArenaClient(t, testServer.URL)
	require.NoError(t, hub.Shutdown(2*time.Second))

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.Zero(t, hub.ClientCount())
}
