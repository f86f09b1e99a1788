package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Gateway metrics
	GatewayOperations *prometheus.CounterVec
	GatewayLatency    *prometheus.HistogramVec
	ScopeDenials      *prometheus.CounterVec

	// Auth metrics
	LoginAttempts  *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	// Pseudonymization metrics
	AliasOperations *prometheus.CounterVec
	KeyRotations    prometheus.Counter

	// Export metrics
	ExportedRows prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		GatewayOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_operations_total",
			Help:      "Record gateway operations by entity, operation and outcome",
		}, []string{"entity", "operation", "outcome"}),
		GatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gateway_operation_duration_seconds",
			Help:      "Time spent executing gateway operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"entity", "operation"}),
		ScopeDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scope_denials_total",
			Help:      "Operations rejected by the access scope",
		}, []string{"entity", "operation"}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Sessions issued and not yet revoked or expired",
		}),
		AliasOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alias_operations_total",
			Help:      "Alias create/resolve operations by outcome",
		}, []string{"operation", "outcome"}),
		KeyRotations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "key_rotations_total",
			Help:      "Encryption key rotations performed",
		}),
		ExportedRows: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exported_rows_total",
			Help:      "Rows written to spreadsheet exports",
		}),
	}
}
