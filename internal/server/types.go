// Package server defines the JSON wire protocol exchanged with arena clients
// and small helpers shared by the client and hub logic.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tyrowin/goarena/internal/game"
)

// Event names carried in Envelope.Type.
const (
	EventMove                 = "move"
	EventCollectibleCollected = "collectibleCollected"
	EventWelcome              = "welcome"
	EventUpdatePlayers        = "updatePlayers"
	EventUpdateCollectibles   = "updateCollectibles"
	EventPlayerDisconnected   = "playerDisconnected"
)

// Envelope is the JSON frame used in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload is sent by clients for EventMove.
type MovePayload struct {
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
}

// WelcomePayload tells a new client which player it controls and how big
// the arena is.
type WelcomePayload struct {
	ID              string  `json:"id"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	PlayerSize      float64 `json:"playerSize"`
	CollectibleSize float64 `json:"collectibleSize"`
}

// PlayerDisconnectedPayload names the player that left.
type PlayerDisconnectedPayload struct {
	ID string `json:"id"`
}

// clientEvent is an inbound message queued for the hub loop.
type clientEvent struct {
	client *Client
	kind   string
	move   MovePayload
}

// orderedPlayers encodes players as a JSON object keyed by id whose keys
// follow registration order, so clients break rank ties the same way the
// server does.
type orderedPlayers []game.PlayerView

func (o orderedPlayers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, view := range o {
		key, err := json.Marshal(view.ID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(view)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeEnvelope(eventType string, payload any) ([]byte, error) {
	if eventType == "" {
		return nil, fmt.Errorf("encode envelope: empty event type")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}

// encodeState renders one snapshot as the updatePlayers and
// updateCollectibles envelopes joined into a single newline separated
// frame, so no client can see a score change without the matching
// collectible removal.
func encodeState(snap game.Snapshot) ([]byte, error) {
	players, err := encodeEnvelope(EventUpdatePlayers, orderedPlayers(snap.OrderedPlayers()))
	if err != nil {
		return nil, err
	}
	collectibles, err := encodeEnvelope(EventUpdateCollectibles, snap.Collectibles)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(players)+len(collectibles)+1)
	frame = append(frame, players...)
	frame = append(frame, '\n')
	return append(frame, collectibles...), nil
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
