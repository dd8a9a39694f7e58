// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, the leaderboard and the built-in play page.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// WebSocketHandler validates that the request uses GET, upgrades it to a
// WebSocket and registers the resulting client with hub.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)

		// The hub launches the pump goroutines once the player exists.
		if !hub.Register(client) {
			log.Printf("Hub is shutting down; closing connection from %s", r.RemoteAddr)
			_ = conn.Close()
		}
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Arena server is running!")
}

// LeaderboardEntry is one row of the standings.
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// LeaderboardHandler returns every connected player ordered by score.
func LeaderboardHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
			return
		}

		standings := hub.world.Leaderboard()
		entries := make([]LeaderboardEntry, 0, len(standings))
		for i, p := range standings {
			entries = append(entries, LeaderboardEntry{Rank: i + 1, ID: p.ID, Score: p.Score})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Printf("Error writing leaderboard response: %v", err)
		}
	}
}

// PlayPageHandler serves a minimal client that renders the state pushed by
// the server and sends moves for w/a/s/d and the arrow keys. It keeps no
// game logic of its own.
func PlayPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, playPage); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}

const playPage = `<!DOCTYPE html>
<html>
<head>
    <title>Arena</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        canvas { border: 1px solid #333; background-color: #f9f9f9; }
        .status { margin: 10px 0; }
    </style>
</head>
<body>
    <div id="status" class="status">Connecting...</div>
    <canvas id="arena" width="800" height="600"></canvas>

    <script>
        const canvas = document.getElementById('arena');
        const ctx = canvas.getContext('2d');
        const statusDiv = document.getElementById('status');
        const keys = {
            w: 'up', ArrowUp: 'up',
            s: 'down', ArrowDown: 'down',
            a: 'left', ArrowLeft: 'left',
            d: 'right', ArrowRight: 'right'
        };

        let selfId = null;
        let arena = { playerSize: 50, collectibleSize: 20 };
        let players = {};
        let order = [];
        let collectibles = [];

        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(scheme + location.host + '/ws');

        ws.onopen = () => { statusDiv.textContent = 'Connected'; };
        ws.onclose = () => { statusDiv.textContent = 'Disconnected'; };

        ws.onmessage = (event) => {
            for (const line of event.data.split('\n')) {
                if (line) handle(JSON.parse(line));
            }
            render();
        };

        function handle(msg) {
            switch (msg.type) {
            case 'welcome':
                selfId = msg.payload.id;
                arena = msg.payload;
                canvas.width = arena.width;
                canvas.height = arena.height;
                break;
            case 'updatePlayers':
                players = msg.payload || {};
                order = Object.keys(players);
                break;
            case 'updateCollectibles':
                collectibles = msg.payload || [];
                break;
            case 'playerDisconnected':
                delete players[msg.payload.id];
                break;
            }
        }

        function rank(id) {
            const sorted = order.map(pid => players[pid]).filter(Boolean);
            sorted.sort((a, b) => b.score - a.score);
            return [sorted.findIndex(p => p.id === id) + 1, sorted.length];
        }

        function render() {
            ctx.clearRect(0, 0, canvas.width, canvas.height);
            for (const c of collectibles) {
                ctx.fillStyle = 'gold';
                ctx.fillRect(c.x, c.y, arena.collectibleSize, arena.collectibleSize);
            }
            for (const id in players) {
                const p = players[id];
                ctx.fillStyle = id === selfId ? 'blue' : 'red';
                ctx.fillRect(p.x, p.y, arena.playerSize, arena.playerSize);
            }
            const me = players[selfId];
            if (!me) return;
            const [ordinal, total] = rank(selfId);
            ctx.fillStyle = 'black';
            ctx.font = '20px Arial';
            ctx.fillText('Score: ' + me.score, 10, 20);
            ctx.fillText('Rank: ' + ordinal + ' / ' + total, 10, 50);
        }

        window.addEventListener('keydown', (event) => {
            const direction = keys[event.key];
            if (!direction || ws.readyState !== WebSocket.OPEN) return;
            ws.send(JSON.stringify({ type: 'move', payload: { direction: direction, amount: 50 } }));
        });
    </script>
</body>
</html>`
