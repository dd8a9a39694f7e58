// Package server wires HTTP handlers into a ServeMux for the arena
// application via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for health check, WebSocket endpoint, play page,
// leaderboard and, when enabled, metrics.
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", WebSocketHandler(hub))
	mux.HandleFunc("/play", PlayPageHandler)
	mux.HandleFunc("/leaderboard", LeaderboardHandler(hub))
	if hub.config.Metrics.Enabled && hub.metrics != nil {
		mux.Handle(hub.config.Metrics.Path, hub.metrics.Handler())
	}
	return mux
}
