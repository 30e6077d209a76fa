// Package metrics provides Prometheus metrics for the growthboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Submission pipeline
	submissionsAccepted prometheus.Counter
	submissionsRejected *prometheus.CounterVec

	// External content API
	contentFetchLatency prometheus.Histogram
	contentFetchErrors  prometheus.Counter

	// Invite code allocation
	inviteCollisions prometheus.Counter
	inviteExhausted  prometheus.Counter

	// Repository
	repositoryQueryLatency  prometheus.Histogram
	repositoryUpdateLatency prometheus.Histogram

	// Read-model gauges, refreshed by the service stats loop
	usersTotal       prometheus.Gauge
	submissionsTotal prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "growthboard",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.submissionsAccepted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total social submissions accepted by the validator",
	})
	m.submissionsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Total social submissions rejected, by reason",
	}, []string{"reason"})

	m.contentFetchLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "content_fetch_latency_ms",
		Help:      "External content API fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.contentFetchErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "content_fetch_errors_total",
		Help:      "Total failed external content API fetches",
	})

	m.inviteCollisions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invite_code_collisions_total",
		Help:      "Total invite code candidates lost to the unique constraint",
	})
	m.inviteExhausted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invite_code_exhausted_total",
		Help:      "Total invite code allocations that hit the retry ceiling",
	})

	m.repositoryQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_ms",
		Help:      "Repository read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.repositoryUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_ms",
		Help:      "Repository write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.usersTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_total",
		Help:      "Current number of registered users",
	})
	m.submissionsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Current number of retained submissions",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers against the global manager.

// RecordSubmissionAccepted counts one accepted submission.
func RecordSubmissionAccepted() {
	if globalManager.enabled {
		globalManager.submissionsAccepted.Inc()
	}
}

// RecordSubmissionRejected counts one rejection for the given reason label.
func RecordSubmissionRejected(reason string) {
	if globalManager.enabled {
		globalManager.submissionsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordContentFetchLatency observes one external fetch round trip.
func RecordContentFetchLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.contentFetchLatency.Observe(latencyMs)
	}
}

// RecordContentFetchError counts one failed external fetch.
func RecordContentFetchError() {
	if globalManager.enabled {
		globalManager.contentFetchErrors.Inc()
	}
}

// RecordInviteCollision counts one code candidate lost to a collision.
func RecordInviteCollision() {
	if globalManager.enabled {
		globalManager.inviteCollisions.Inc()
	}
}

// RecordInviteExhausted counts one allocation that hit the retry ceiling.
func RecordInviteExhausted() {
	if globalManager.enabled {
		globalManager.inviteExhausted.Inc()
	}
}

// RecordRepositoryQueryLatency observes one repository read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.repositoryQueryLatency.Observe(latencyMs)
	}
}

// RecordRepositoryUpdateLatency observes one repository write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.repositoryUpdateLatency.Observe(latencyMs)
	}
}

// UpdateUsersTotal refreshes the registered-user gauge.
func UpdateUsersTotal(count int64) {
	if globalManager.enabled {
		globalManager.usersTotal.Set(float64(count))
	}
}

// UpdateSubmissionsTotal refreshes the retained-submission gauge.
func UpdateSubmissionsTotal(count int64) {
	if globalManager.enabled {
		globalManager.submissionsTotal.Set(float64(count))
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// GetRegistry returns the custom registry serving /healthz scrapes.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
