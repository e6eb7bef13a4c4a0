package impl_platform

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusTransferMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewPrometheusTransferMetrics(reg prometheus.Registerer) *PrometheusTransferMetrics {
	m := &PrometheusTransferMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_total",
				Help: "Transfer requests by terminal status and error kind",
			},
			[]string{"status", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transfer_duration_seconds",
				Help:    "Time spent executing a transfer request",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(m.total, m.duration)

	return m
}

func (m *PrometheusTransferMetrics) ObserveTransfer(status string, kind string, elapsed time.Duration) {
	if kind == "" {
		kind = "none"
	}
	m.total.WithLabelValues(status, kind).Inc()
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}
