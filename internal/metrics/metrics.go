// Package metrics exposes counters for the best-effort paths whose partial
// failures would otherwise be visible only in logs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	TripDuplications    *prometheus.CounterVec
	DocumentCopySkipped prometheus.Counter
	PushSends           *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		TripDuplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailstack_trip_duplications_total",
			Help: "Trip duplication attempts by result.",
		}, []string{"result"}),
		DocumentCopySkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailstack_document_copies_skipped_total",
			Help: "Documents skipped during trip duplication because the blob copy failed.",
		}),
		PushSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailstack_push_sends_total",
			Help: "Web push notification sends by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.TripDuplications, m.DocumentCopySkipped, m.PushSends)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
