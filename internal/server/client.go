// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Client is one WebSocket connection and the player it controls. The
// client id doubles as the player id.
type Client struct {
	id             string
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	addr           string
	closed         bool
	maxMessageSize int64
	rateLimiter    *rateLimiter
	rateLimit      RateLimitConfig
}

// NewClient creates a Client with a fresh id and a buffered send channel.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := hub.config
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Client{
		id:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, sendBuffer),
		hub:            hub,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		rateLimiter:    newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit:      cfg.RateLimit,
	}
}

// ID returns the connection id, which is also the player id.
func (c *Client) ID() string {
	return c.id
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Error setting initial read deadline for %s: %v", c.addr, err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Error setting read deadline in pong handler for %s: %v", c.addr, err)
		}
		return nil
	})
}

// handleReadError logs appropriate error messages based on the error type
// and returns true if the read loop should break
func (c *Client) handleReadError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, websocket.ErrReadLimit) {
		log.Printf("Message from %s exceeded maximum size of %d bytes", c.addr, c.maxMessageSize)
		return true
	}

	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		log.Printf("Client %s disconnected: %v", c.addr, err)
		return true
	}

	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		log.Printf("Client %s connection closed: %v", c.addr, err)
		return true
	}

	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig) {
		log.Printf("Unexpected WebSocket error from %s: %v", c.addr, err)
		return true
	}

	log.Printf("WebSocket read error from %s: %v", c.addr, err)
	return true
}

// checkRateLimit verifies if the client has exceeded rate limits
// and returns true if the message should be processed
func (c *Client) checkRateLimit() bool {
	if c.rateLimiter != nil && !c.rateLimiter.allow() {
		log.Printf("Rate limit exceeded for %s (%d messages per %s); discarding message", c.addr, c.rateLimit.Burst, c.rateLimit.RefillInterval)
		c.hub.metrics.recordRateLimited()
		return false
	}
	return true
}

// decodeEvent parses an inbound envelope into a hub event. Unknown types and
// malformed payloads are reported as errors and dropped by the caller.
func (c *Client) decodeEvent(rawMessage []byte) (clientEvent, error) {
	var env Envelope
	if err := json.Unmarshal(rawMessage, &env); err != nil {
		return clientEvent{}, err
	}

	ev := clientEvent{client: c, kind: env.Type}
	switch env.Type {
	case EventMove:
		if len(env.Payload) == 0 {
			return clientEvent{}, errors.New("move without payload")
		}
		if err := json.Unmarshal(env.Payload, &ev.move); err != nil {
			return clientEvent{}, err
		}
	case EventCollectibleCollected:
	default:
		return clientEvent{}, errors.New("unknown event type " + env.Type)
	}
	return ev, nil
}

// processMessage decodes a raw message and queues it for the hub. It
// returns false when the hub is no longer accepting events.
func (c *Client) processMessage(rawMessage []byte) bool {
	ev, err := c.decodeEvent(rawMessage)
	if err != nil {
		log.Printf("Invalid message from %s: %v", c.addr, err)
		return true
	}
	return c.hub.enqueue(ev)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		if err := c.conn.Close(); err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Error closing connection in readPump: %v", err)
			}
		}
	}()

	c.setupReadConnection()

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if c.handleReadError(err) {
				break
			}
			continue
		}

		if !c.checkRateLimit() {
			continue
		}

		if !c.processMessage(rawMessage) {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		return c.handleMessage(message, ok)
	case <-ticker.C:
		return c.handlePing()
	}
}

// closeConnection safely closes the WebSocket connection with proper error handling
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error closing connection in writePump: %v", err)
		}
	}
}

// handleMessage processes outgoing messages and returns false if the connection should be closed
func (c *Client) handleMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Error setting write deadline for %s: %v", c.addr, err)
		return false
	}

	if !ok {
		return c.writeCloseMessage()
	}

	return c.writeTextMessage(message)
}

// writeCloseMessage sends a close message to the client
func (c *Client) writeCloseMessage() bool {
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing close message to %s: %v", c.addr, err)
		}
	}
	return false
}

// writeTextMessage writes a frame plus anything already queued, one
// envelope per line.
func (c *Client) writeTextMessage(message []byte) bool {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		log.Printf("Error creating writer for %s: %v", c.addr, err)
		return false
	}

	if !c.writeMessageContent(w, message) {
		return false
	}

	if !c.writeQueuedMessages(w) {
		return false
	}

	return c.closeWriter(w)
}

// writeMessageContent writes the main message content
func (c *Client) writeMessageContent(w io.WriteCloser, message []byte) bool {
	if _, err := w.Write(message); err != nil {
		log.Printf("Error writing message to %s: %v", c.addr, err)
		return false
	}
	return true
}

// writeQueuedMessages drains what is buffered right now. A closed channel
// ends the batch; the next select observes it.
func (c *Client) writeQueuedMessages(w io.WriteCloser) bool {
	n := len(c.send)
	for i := 0; i < n; i++ {
		message, ok := <-c.send
		if !ok {
			return true
		}
		if !c.writeQueuedMessage(w, message) {
			return false
		}
	}
	return true
}

// writeQueuedMessage writes a single queued message with newline separator
func (c *Client) writeQueuedMessage(w io.WriteCloser, message []byte) bool {
	if _, err := w.Write([]byte{'\n'}); err != nil {
		log.Printf("Error writing newline to %s: %v", c.addr, err)
		return false
	}
	if _, err := w.Write(message); err != nil {
		log.Printf("Error writing queued message to %s: %v", c.addr, err)
		return false
	}
	return true
}

// closeWriter closes the message writer
func (c *Client) closeWriter(w io.WriteCloser) bool {
	if err := w.Close(); err != nil {
		log.Printf("Error closing writer for %s: %v", c.addr, err)
		return false
	}
	return true
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Error setting write deadline for ping to %s: %v", c.addr, err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		log.Printf("Error writing ping message to %s: %v", c.addr, err)
		return false
	}
	return true
}
