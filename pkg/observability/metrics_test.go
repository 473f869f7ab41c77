package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	t.Run("creates and registers all metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		if metrics == nil {
			t.Fatal("NewMetrics returned nil")
		}

		// Verify authorization metrics are initialized
		if metrics.PermissionChecksTotal == nil {
			t.Error("PermissionChecksTotal is nil")
		}
		if metrics.PermissionCheckDuration == nil {
			t.Error("PermissionCheckDuration is nil")
		}
		if metrics.FallbackResolutionsTotal == nil {
			t.Error("FallbackResolutionsTotal is nil")
		}

		// Verify cache metrics are initialized
		if metrics.CacheHitsTotal == nil {
			t.Error("CacheHitsTotal is nil")
		}
		if metrics.CacheMissesTotal == nil {
			t.Error("CacheMissesTotal is nil")
		}

		// Verify session metrics are initialized
		if metrics.SessionTransitionsTotal == nil {
			t.Error("SessionTransitionsTotal is nil")
		}

		// Verify outbound HTTP metrics are initialized
		if metrics.ClientRequestsTotal == nil {
			t.Error("ClientRequestsTotal is nil")
		}
		if metrics.ClientRequestDuration == nil {
			t.Error("ClientRequestDuration is nil")
		}
	})

	t.Run("nil registry gets a private one", func(t *testing.T) {
		// Constructing twice must not panic on duplicate registration.
		m1 := NewMetrics(nil)
		m2 := NewMetrics(nil)
		if m1 == nil || m2 == nil {
			t.Fatal("NewMetrics returned nil")
		}
	})
}

func TestMetricsCounters(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.PermissionChecksTotal.WithLabelValues("remote", "granted").Inc()
	metrics.PermissionChecksTotal.WithLabelValues("remote", "granted").Inc()
	metrics.FallbackResolutionsTotal.Inc()
	metrics.CacheHitsTotal.Inc()
	metrics.SessionTransitionsTotal.WithLabelValues("authenticated").Inc()
	metrics.ClientRequestsTotal.WithLabelValues("user", "login", "200").Inc()

	if got := testutil.ToFloat64(metrics.PermissionChecksTotal.WithLabelValues("remote", "granted")); got != 2 {
		t.Errorf("PermissionChecksTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.FallbackResolutionsTotal); got != 1 {
		t.Errorf("FallbackResolutionsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CacheHitsTotal); got != 1 {
		t.Errorf("CacheHitsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.SessionTransitionsTotal.WithLabelValues("authenticated")); got != 1 {
		t.Errorf("SessionTransitionsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ClientRequestsTotal.WithLabelValues("user", "login", "200")); got != 1 {
		t.Errorf("ClientRequestsTotal = %v, want 1", got)
	}
}
