// Package server coordinates client registration, event processing and the
// full-state broadcast for the arena via the Hub type.
package server

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/goarena/internal/game"
)

// Hub owns the set of connected clients and is the only goroutine that
// feeds events into the World. Registration, unregistration, client events
// and ticks are handled one at a time, each followed by a full-state
// broadcast, so every client sees the same ordered sequence of states.
type Hub struct {
	world    *game.World
	config   Config
	metrics  *Metrics
	upgrader websocket.Upgrader

	clients    map[*Client]bool
	events     chan clientEvent
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a hub serving world. metrics may be nil.
func NewHub(world *game.World, cfg Config, metrics *Metrics) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	origins := newOriginPolicy(cfg.AllowedOrigins)
	return &Hub{
		world:   world,
		config:  cfg,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		clients:    make(map[*Client]bool),
		events:     make(chan clientEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// World returns the arena state served by the hub.
func (h *Hub) World() *game.World {
	return h.world
}

// Start runs the hub loop in its own goroutine.
func (h *Hub) Start() {
	go h.Run()
	log.Println("Hub started and ready to manage WebSocket connections")
}

// Register hands a freshly upgraded client to the hub. It returns false if
// the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) enqueue(ev clientEvent) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.events <- ev:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[client]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	var tick <-chan time.Time
	if h.config.TickInterval > 0 {
		ticker := time.NewTicker(h.config.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case ev := <-h.events:
			h.handleEvent(ev)

		case <-tick:
			if h.world.Tick() {
				h.broadcastState()
			}
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		log.Printf("Received nil client registration; skipping")
		return
	}

	player, err := h.world.Connect(client.id)
	if err != nil {
		log.Printf("Rejecting client %s from %s: %v", client.id, client.addr, err)
		if client.conn != nil {
			_ = client.conn.Close()
		}
		return
	}

	h.mutex.Lock()
	client.closed = false
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mutex.Unlock()
	log.Printf("Player %s connected from %s at (%.0f, %.0f). Total clients: %d",
		player.ID, client.addr, player.X, player.Y, clientCount)
	h.metrics.recordEvent("connect")

	arena := h.world.Arena()
	welcome, err := encodeEnvelope(EventWelcome, WelcomePayload{
		ID:              player.ID,
		Width:           arena.Width,
		Height:          arena.Height,
		PlayerSize:      arena.PlayerSize,
		CollectibleSize: arena.CollectibleSize,
	})
	if err != nil {
		log.Printf("Error encoding welcome for %s: %v", player.ID, err)
	} else {
		h.safeSend(client, welcome)
	}

	if client.conn != nil {
		h.wg.Add(2)
		go func() {
			defer h.wg.Done()
			client.writePump()
		}()
		go func() {
			defer h.wg.Done()
			client.readPump()
		}()
	}

	h.broadcastState()
}

func (h *Hub) handleUnregister(client *Client) {
	if client == nil {
		return
	}

	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closed = true
		clientCount := len(h.clients)
		h.mutex.Unlock()
		// Close the channel after releasing the lock
		close(client.send)
		log.Printf("Client unregistered from %s. Total clients: %d", client.addr, clientCount)
	} else {
		h.mutex.Unlock()
	}

	if !h.world.Disconnect(client.id) {
		return
	}
	log.Printf("Player %s disconnected", client.id)
	h.metrics.recordEvent("disconnect")

	if msg, err := encodeEnvelope(EventPlayerDisconnected, PlayerDisconnectedPayload{ID: client.id}); err == nil {
		h.broadcast(msg)
	}
	h.broadcastState()
}

func (h *Hub) handleEvent(ev clientEvent) {
	if ev.client == nil {
		return
	}
	h.metrics.recordEvent(ev.kind)

	switch ev.kind {
	case EventMove:
		amount := math.Min(ev.move.Amount, h.config.Game.MaxMoveAmount)
		res := h.world.Move(ev.client.id, game.Direction(ev.move.Direction), amount)
		if !res.Known {
			return
		}
		if res.Picked != nil {
			h.metrics.recordPickup()
			log.Printf("Player %s picked up collectible %s (score %d)", res.Player.ID, res.Picked.ID, res.Player.Score)
		}
		h.broadcastState()

	case EventCollectibleCollected:
		if known, _ := h.world.CollectibleCollected(ev.client.id); known {
			h.broadcastState()
		}
	}
}

// broadcastState pushes the entire player map and collectible list to
// every client as one frame.
func (h *Hub) broadcastState() {
	snap := h.world.Snapshot()
	frame, err := encodeState(snap)
	if err != nil {
		log.Printf("Error encoding state: %v", err)
		return
	}
	h.metrics.recordBroadcast(len(snap.Players), len(snap.Collectibles))
	h.broadcast(frame)
}

func (h *Hub) broadcast(payload []byte) {
	clients := h.getClientSnapshot()
	clientsToRemove := h.broadcastToClients(clients, payload)
	h.removeFailedClients(clientsToRemove)
}

// getClientSnapshot returns a thread-safe snapshot of all current clients
func (h *Hub) getClientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// broadcastToClients queues payload on every client and returns the ones
// whose buffers were full
func (h *Hub) broadcastToClients(clients []*Client, payload []byte) []*Client {
	var clientsToRemove []*Client

	for _, client := range clients {
		if !h.safeSend(client, payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}

	return clientsToRemove
}

// removeFailedClients drops the transport side of slow clients. Their
// players are removed when the read pump reports the disconnect.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if _, exists := h.clients[client]; exists {
			delete(h.clients, client)
			client.closed = true
			channelsToClose = append(channelsToClose, client.send)
			log.Printf("Client from %s removed due to full send buffer", client.addr)
		}
	}
	h.mutex.Unlock()

	for _, ch := range channelsToClose {
		close(ch)
	}
	h.metrics.recordDroppedClients(len(channelsToClose))
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, client)
		client.closed = true
	}
	h.mutex.Unlock()

	for _, client := range clients {
		// Closing send stops the write pump; closing conn stops the read pump.
		close(client.send)
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
