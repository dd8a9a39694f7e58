// Package server exposes Prometheus collectors for arena activity.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "arena"
	subsystem = "hub"
)

// Metrics records hub activity. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	playersConnected prometheus.Gauge
	collectiblesLive prometheus.Gauge
	eventsTotal      *prometheus.CounterVec
	pickupsTotal     prometheus.Counter
	broadcastsTotal  prometheus.Counter
	droppedClients   prometheus.Counter
	rateLimited      prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		playersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "players_connected",
			Help:      "Number of players currently registered in the arena",
		}),
		collectiblesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "collectibles_live",
			Help:      "Number of collectibles in the last broadcast",
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "Events processed by the hub loop by type",
		}, []string{"type"}),
		pickupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pickups_total",
			Help:      "Collectibles picked up by players",
		}),
		broadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broadcasts_total",
			Help:      "Full state broadcasts sent to all clients",
		}),
		droppedClients: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_clients_total",
			Help:      "Clients removed because their send buffer was full",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_messages_total",
			Help:      "Inbound messages discarded by the per-connection rate limiter",
		}),
	}

	m.registry.MustRegister(
		m.playersConnected,
		m.collectiblesLive,
		m.eventsTotal,
		m.pickupsTotal,
		m.broadcastsTotal,
		m.droppedClients,
		m.rateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) recordEvent(eventType string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) recordPickup() {
	if m == nil {
		return
	}
	m.pickupsTotal.Inc()
}

func (m *Metrics) recordBroadcast(players, collectibles int) {
	if m == nil {
		return
	}
	m.broadcastsTotal.Inc()
	m.playersConnected.Set(float64(players))
	m.collectiblesLive.Set(float64(collectibles))
}

func (m *Metrics) recordDroppedClients(n int) {
	if m == nil {
		return
	}
	m.droppedClients.Add(float64(n))
}

func (m *Metrics) recordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
