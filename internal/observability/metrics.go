package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Connection metrics
	ConnectionsOpened *prometheus.CounterVec
	ConnectionsClosed *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
	DialErrors        prometheus.Counter

	// Relay metrics
	BytesRelayed    *prometheus.CounterVec
	BytesDropped    *prometheus.CounterVec
	RelayErrors     *prometheus.CounterVec
	BufferOccupancy *prometheus.HistogramVec
	WriteStalls     *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		ConnectionsOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_connections_opened_total",
				Help: "Total number of client connections accepted",
			},
			[]string{"ingress"},
		),
		ConnectionsClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_connections_closed_total",
				Help: "Total number of client connections closed",
			},
			[]string{"ingress", "reason"},
		),
		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_active_connections",
				Help: "Number of connections currently being relayed",
			},
		),
		DialErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "relay_upstream_dial_errors_total",
				Help: "Total number of failed upstream dials",
			},
		),

		BytesRelayed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_bytes_total",
				Help: "Total bytes relayed between client and upstream",
			},
			[]string{"direction"},
		),
		BytesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_bytes_dropped_total",
				Help: "Total bytes discarded because the buffer was full",
			},
			[]string{"direction"},
		),
		RelayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_errors_total",
				Help: "Total number of relay transfer errors",
			},
			[]string{"direction"},
		),
		BufferOccupancy: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_buffer_occupancy_ratio",
				Help:    "Buffer occupancy observed at drain time, as a fraction of capacity",
				Buckets: []float64{0.0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99, 1.0},
			},
			[]string{"direction"},
		),
		WriteStalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_write_stalls_total",
				Help: "Total number of short writes caused by a full buffer",
			},
			[]string{"direction"},
		),
	}
}

// IncConnectionsOpened increments the opened-connections counter.
func (m *Metrics) IncConnectionsOpened(ingress string) {
	m.ConnectionsOpened.WithLabelValues(ingress).Inc()
}

// IncConnectionsClosed increments the closed-connections counter.
func (m *Metrics) IncConnectionsClosed(ingress, reason string) {
	m.ConnectionsClosed.WithLabelValues(ingress, reason).Inc()
}

// IncDialErrors increments the upstream dial error counter.
func (m *Metrics) IncDialErrors() {
	m.DialErrors.Inc()
}

// IncActiveConnections increments the active-connections gauge.
func (m *Metrics) IncActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecActiveConnections decrements the active-connections gauge.
func (m *Metrics) DecActiveConnections() {
	m.ActiveConnections.Dec()
}

// AddBytesRelayed adds to the relayed-bytes counter for a direction.
func (m *Metrics) AddBytesRelayed(direction string, n int) {
	m.BytesRelayed.WithLabelValues(direction).Add(float64(n))
}

// AddBytesDropped adds to the dropped-bytes counter for a direction.
func (m *Metrics) AddBytesDropped(direction string, n uint64) {
	m.BytesDropped.WithLabelValues(direction).Add(float64(n))
}

// IncRelayErrors increments the relay error counter for a direction.
func (m *Metrics) IncRelayErrors(direction string) {
	m.RelayErrors.WithLabelValues(direction).Inc()
}

// ObserveBufferOccupancy observes the buffer fill ratio for a direction.
func (m *Metrics) ObserveBufferOccupancy(direction string, ratio float64) {
	m.BufferOccupancy.WithLabelValues(direction).Observe(ratio)
}

// IncWriteStalls increments the short-write counter for a direction.
func (m *Metrics) IncWriteStalls(direction string) {
	m.WriteStalls.WithLabelValues(direction).Inc()
}
