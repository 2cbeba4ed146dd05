package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RequestDuration         *prometheus.HistogramVec
	AuditEventsDropped      prometheus.Counter
	AcknowledgmentsRecorded prometheus.Counter
	PendingAcknowledgments  prometheus.Gauge
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on a caller-supplied registry. Tests
// use this to avoid duplicate-registration panics across cases.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complyd_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		AuditEventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "complyd_audit_events_dropped_total",
			Help: "Audit events discarded because the recorder buffer was full",
		}),
		AcknowledgmentsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "complyd_policy_acknowledgments_total",
			Help: "Policy acknowledgments recorded, including idempotent repeats",
		}),
		PendingAcknowledgments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "complyd_pending_acknowledgments",
			Help: "Pending acknowledgment count from the most recent compliance summary",
		}),
	}
}
