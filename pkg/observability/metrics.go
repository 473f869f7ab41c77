package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Authorization metrics
	PermissionChecksTotal    *prometheus.CounterVec
	PermissionCheckDuration  *prometheus.HistogramVec
	FallbackResolutionsTotal prometheus.Counter

	// Permission cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Session metrics
	SessionTransitionsTotal *prometheus.CounterVec

	// Outbound HTTP metrics
	ClientRequestsTotal   *prometheus.CounterVec
	ClientRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// gets a private one, which keeps repeated construction (tests, multiple
// SDK instances) from colliding on the default registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posgate_permission_checks_total",
				Help: "Total number of individual permission checks",
			},
			[]string{"source", "outcome"},
		),
		PermissionCheckDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "posgate_permission_check_duration_seconds",
				Help:    "Permission check duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		FallbackResolutionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "posgate_fallback_resolutions_total",
				Help: "Permission checks answered by the local policy table because the authority was unreachable",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "posgate_permission_cache_hits_total",
				Help: "Total number of permission cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "posgate_permission_cache_misses_total",
				Help: "Total number of permission cache misses",
			},
		),
		SessionTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posgate_session_transitions_total",
				Help: "Total number of session state transitions",
			},
			[]string{"to"},
		),
		ClientRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posgate_client_requests_total",
				Help: "Total number of outbound requests to backend services",
			},
			[]string{"service", "operation", "status"},
		),
		ClientRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "posgate_client_request_duration_seconds",
				Help:    "Outbound request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),
	}

	registry.MustRegister(
		m.PermissionChecksTotal,
		m.PermissionCheckDuration,
		m.FallbackResolutionsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SessionTransitionsTotal,
		m.ClientRequestsTotal,
		m.ClientRequestDuration,
	)

	return m
}

// NopMetrics returns metrics bound to a throwaway registry
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
