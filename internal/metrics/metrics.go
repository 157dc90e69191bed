// Package metrics exposes Prometheus metrics for the caproi HTTP service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the request duration histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry registers the metrics on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// Manager owns the service metrics and the registry they are exposed from.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	uploads         *prometheus.CounterVec
	uploadFailures  *prometheus.CounterVec
	entitiesScored  prometheus.Counter
	activeSessions  prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "caproi",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.uploads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "uploads_total",
		Help:      "Roster uploads scored, by whether a performance file was supplied",
	}, []string{"performance"})

	m.uploadFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "upload_failures_total",
		Help:      "Roster uploads rejected, by reason",
	}, []string{"reason"})

	m.entitiesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "entities_scored_total",
		Help:      "Players normalized and scored across all uploads",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently cached in memory",
	})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method", "status_code"})
}

// RecordUpload counts one successfully scored upload of n players.
func (m *Manager) RecordUpload(withPerformance bool, n int) {
	m.uploads.WithLabelValues(strconv.FormatBool(withPerformance)).Inc()
	m.entitiesScored.Add(float64(n))
}

// RecordUploadFailure counts a rejected upload.
func (m *Manager) RecordUploadFailure(reason string) {
	m.uploadFailures.WithLabelValues(reason).Inc()
}

// SetActiveSessions reports the current number of cached sessions.
func (m *Manager) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// ObserveRequest records one HTTP request against its route pattern.
func (m *Manager) ObserveRequest(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
