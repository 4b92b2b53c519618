// Package middleware provides cross-cutting concerns for the evaluation
// engine, currently Prometheus-backed metrics collection.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-verdict/internal/ports"
)

// PrometheusMetrics implements ports.MetricsCollector on the global
// Prometheus registry. Metric names arrive from callers at runtime, so
// the implementation keeps a small set of vectors keyed by metric name
// rather than one registered collector per name.
type PrometheusMetrics struct {
	latency    *prometheus.HistogramVec
	counters   *prometheus.CounterVec
	gauges     *prometheus.GaugeVec
	histograms *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the evaluation metric vectors with the
// global registry. Construct it once per process; duplicate registration
// panics by promauto design.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "verdict_operation_duration_seconds",
				Help:    "Execution time of evaluation pipeline operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model"},
		),
		counters: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verdict_events_total",
				Help: "Counts of evaluation pipeline events such as evaluated turns, skipped turns, and judge errors.",
			},
			[]string{"event", "model"},
		),
		gauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "verdict_state",
				Help: "Current state values of the evaluation pipeline.",
			},
			[]string{"metric", "model"},
		),
		histograms: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "verdict_values",
				Help: "Distributions of evaluation values such as overall scores and token counts.",
				// Scores live in [0, 1]; token counts overflow into +Inf.
				Buckets: []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1, 10, 100, 1000},
			},
			[]string{"metric", "model"},
		),
	}
}

func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.latency.WithLabelValues(operation, labelOr(labels, "model")).Observe(duration.Seconds())
}

func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.counters.WithLabelValues(metric, labelOr(labels, "model")).Add(value)
}

func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	pm.gauges.WithLabelValues(metric, labelOr(labels, "model")).Set(value)
}

func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	pm.histograms.WithLabelValues(metric, labelOr(labels, "model")).Observe(value)
}

func labelOr(labels map[string]string, key string) string {
	if labels == nil {
		return "unknown"
	}
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
