// Package observability exposes Prometheus metrics for dataset generation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	datasetsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prodsynth",
		Subsystem: "generate",
		Name:      "datasets_total",
		Help:      "Datasets written successfully.",
	})
	rowsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prodsynth",
		Subsystem: "generate",
		Name:      "rows_total",
		Help:      "Data rows written across all datasets.",
	})
	generateFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prodsynth",
		Subsystem: "generate",
		Name:      "failures_total",
		Help:      "Generation runs that ended in an error.",
	})
	generateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "prodsynth",
		Subsystem: "generate",
		Name:      "duration_seconds",
		Help:      "Wall time from sampling the first row to finalizing the file.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
	lastSuccessGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "prodsynth",
		Subsystem: "generate",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful generation.",
	})
)

func init() {
	prometheus.MustRegister(datasetsGenerated, rowsGenerated, generateFailures, generateDuration, lastSuccessGauge)
}

// RecordGenerated records a successful generation of rows rows that took elapsed.
func RecordGenerated(rows int, elapsed time.Duration, at time.Time) {
	datasetsGenerated.Inc()
	rowsGenerated.Add(float64(rows))
	generateDuration.Observe(elapsed.Seconds())
	if !at.IsZero() {
		lastSuccessGauge.Set(float64(at.Unix()))
	}
}

// RecordFailure records a failed generation.
func RecordFailure() {
	generateFailures.Inc()
}
