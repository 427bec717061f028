package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the viewer API. Each
// Handler owns its own registry so tests never collide on the global
// one.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	redactionsTotal prometheus.Counter
	eventsServed    prometheus.Counter
}

// NewMetrics builds a metrics set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kibitz",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Viewer API requests by endpoint and status code.",
			},
			[]string{"endpoint", "status"},
		),
		redactionsTotal: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "kibitz",
			Subsystem: "api",
			Name:      "redactions_total",
			Help:      "Events served with redaction applied.",
		}),
		eventsServed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "kibitz",
			Subsystem: "api",
			Name:      "events_served_total",
			Help:      "Events returned across all event reads.",
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
