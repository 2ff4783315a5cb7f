package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rejections *prometheus.CounterVec
	accepted   *prometheus.CounterVec
}

// NewMetrics creates the service collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golf_service_operations_total",
				Help: "Number of service operations by outcome (ok, rejected, error).",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "golf_service_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golf_solution_rejections_total",
				Help: "Number of rejected solution submissions by error kind.",
			},
			[]string{"kind"},
		),
		accepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golf_bounds_accepted_total",
				Help: "Number of stored bounds by kind (upper, lower, solution).",
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration, m.rejections, m.accepted)
	}
	return m
}

func (m *Metrics) observe(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) rejected(kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) stored(kind string) {
	if m == nil {
		return
	}
	m.accepted.WithLabelValues(kind).Inc()
}
