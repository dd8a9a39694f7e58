// Package server implements the HTTP and WebSocket transport for the arena.
//
// The implementation is organized into specialized files for configuration, hub
// management, clients, routing, and HTTP handlers. All game rules live in the
// game package; the hub feeds it events and broadcasts its snapshots.
package server
