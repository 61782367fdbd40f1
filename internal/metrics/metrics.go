// Package metrics exposes Prometheus instruments for tower retrieval.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Retrieval metrics
	retrievalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "towerdash_retrievals_total",
		Help: "Tower batch retrievals by the tier that produced the result",
	}, []string{"source", "tier"})

	retrievalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "towerdash_retrieval_duration_seconds",
		Help:    "Time taken to produce a tower batch",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	})

	towersServed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "towerdash_towers_served",
		Help: "Number of towers in the most recent batch",
	})

	// Proxy metrics
	proxyAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "towerdash_proxy_attempts_total",
		Help: "Live fetch attempts by proxy and outcome",
	}, []string{"proxy", "outcome"})

	proxyAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "towerdash_proxy_attempt_duration_seconds",
		Help:    "Duration of a single live fetch attempt",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"proxy"})

	// Mapping metrics
	rowsMappedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerdash_rows_mapped_total",
		Help: "Spreadsheet rows turned into towers",
	})

	rowsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerdash_rows_skipped_total",
		Help: "Spreadsheet rows skipped as invalid",
	})

	defaultsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "towerdash_field_defaults_total",
		Help: "Fields filled with a default value because the cell was missing",
	})
)

// RecordRetrieval records a finished retrieval.
func RecordRetrieval(source, tier string, towers int, d time.Duration) {
	retrievalsTotal.WithLabelValues(source, tier).Inc()
	retrievalDuration.Observe(d.Seconds())
	towersServed.Set(float64(towers))
}

// RecordProxyAttempt records one live fetch attempt through a proxy.
func RecordProxyAttempt(proxy, outcome string, d time.Duration) {
	proxyAttemptsTotal.WithLabelValues(proxy, outcome).Inc()
	proxyAttemptDuration.WithLabelValues(proxy).Observe(d.Seconds())
}

// RecordMapping records the outcome of mapping one grid.
func RecordMapping(mapped, skipped, defaults int) {
	rowsMappedTotal.Add(float64(mapped))
	rowsSkippedTotal.Add(float64(skipped))
	defaultsAppliedTotal.Add(float64(defaults))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
