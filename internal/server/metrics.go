package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests           *prometheus.CounterVec
	latency            *prometheus.HistogramVec
	recalledMemories   prometheus.Histogram
	recalledReferences prometheus.Histogram
	activeSessions     prometheus.Gauge
	busyRejections     prometheus.Counter
	persistFailures    prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		// Labels: route, status (HTTP status code)
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vera",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vera",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		recalledMemories: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vera",
			Subsystem: "recall",
			Name:      "memories",
			Help:      "Relevant memories injected per turn",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}),
		recalledReferences: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vera",
			Subsystem: "recall",
			Name:      "references",
			Help:      "Reference corpus examples injected per turn",
			Buckets:   []float64{0, 1, 2, 5, 10},
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vera",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Sessions currently held in memory",
		}),
		busyRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vera",
			Subsystem: "sessions",
			Name:      "busy_rejections_total",
			Help:      "Requests rejected because the session was busy",
		}),
		persistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vera",
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Replies delivered but not saved",
		}),
	}
}

// ObserveRecall matches engine.WithRecallObserver.
func (m *Metrics) ObserveRecall(memories, references int) {
	m.recalledMemories.Observe(float64(memories))
	m.recalledReferences.Observe(float64(references))
}

// SessionCreated and SessionEvicted track the active session gauge.
func (m *Metrics) SessionCreated() { m.activeSessions.Inc() }
func (m *Metrics) SessionEvicted() { m.activeSessions.Dec() }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
