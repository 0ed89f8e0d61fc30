// Package metrics exposes Prometheus metrics for the candlestick API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	HistoryRequests *prometheus.CounterVec   // labels: provider, outcome
	HistoryDuration *prometheus.HistogramVec // labels: provider
	HistoryRecords  *prometheus.CounterVec   // labels: provider

	provider string
	registry *prometheus.Registry
}

// NewMetrics registers and returns all metrics for the given provider name.
func NewMetrics(provider string) *Metrics {
	m := &Metrics{
		HistoryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_history_requests_total",
			Help: "History-by-offset requests by outcome",
		}, []string{"provider", "outcome"}),
		HistoryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quote_history_request_duration_seconds",
			Help:    "History-by-offset request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		HistoryRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_history_records_total",
			Help: "Candlesticks returned to callers",
		}, []string{"provider"}),
		provider: provider,
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HistoryRequests,
		m.HistoryDuration,
		m.HistoryRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveHistory records one completed request.
func (m *Metrics) ObserveHistory(outcome string, elapsed time.Duration, records int) {
	m.HistoryRequests.WithLabelValues(m.provider, outcome).Inc()
	m.HistoryDuration.WithLabelValues(m.provider).Observe(elapsed.Seconds())
	if records > 0 {
		m.HistoryRecords.WithLabelValues(m.provider).Add(float64(records))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
