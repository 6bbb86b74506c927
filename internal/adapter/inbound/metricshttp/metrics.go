// Package metricshttp exposes kernel metrics over an optional Prometheus
// endpoint used in serve mode.
package metricshttp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the kernel. Pass to components
// that need to record them.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DenialsTotal    *prometheus.CounterVec
	AuditDropsTotal prometheus.Counter
	ModuleInFlight  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cabinet_kernel",
				Name:      "requests_total",
				Help:      "Total requests processed, by outcome",
			},
			[]string{"outcome"}, // outcome=result/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cabinet_kernel",
				Name:      "request_duration_seconds",
				Help:      "End-to-end pipeline duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		DenialsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cabinet_kernel",
				Name:      "denials_total",
				Help:      "Total denied or failed requests, by error code",
			},
			[]string{"code"},
		),
		AuditDropsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "cabinet_kernel",
				Name:      "audit_drops_total",
				Help:      "Total audit records that failed to persist",
			},
		),
		ModuleInFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cabinet_kernel",
				Name:      "module_in_flight",
				Help:      "Module executions currently running",
			},
		),
	}
}
