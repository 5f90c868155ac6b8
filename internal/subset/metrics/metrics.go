// Package metrics provides internal instrumentation for the subset module.
// Nothing here is exposed on the public API surface; the registry is scraped
// only when an operator wires the default handler into a private listener.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the subset lifecycle and enrichment.
type Metrics struct {
	// Lifecycle operation outcomes by operation and result
	LifecycleOps *prometheus.CounterVec

	// Snapshot lookups by outcome: "memoized", "fetched", "failed"
	SnapshotLookups *prometheus.CounterVec

	// Duration of one full enrichment pass
	EnrichLatency prometheus.Histogram
}

// New creates a Metrics instance with all subset module metrics registered.
func New() *Metrics {
	return &Metrics{
		LifecycleOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subsets_lifecycle_operations_total",
			Help: "Total lifecycle operations by operation and result",
		}, []string{"operation", "result"}),

		SnapshotLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subsets_snapshot_lookups_total",
			Help: "Classification snapshot lookups by outcome",
		}, []string{"outcome"}),

		EnrichLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "subsets_enrichment_duration_seconds",
			Help:    "Duration of one code enrichment pass",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncLifecycleOp records one lifecycle operation outcome.
func (m *Metrics) IncLifecycleOp(operation, result string) {
	if m != nil {
		m.LifecycleOps.WithLabelValues(operation, result).Inc()
	}
}

// IncSnapshotLookup records one snapshot lookup outcome.
func (m *Metrics) IncSnapshotLookup(outcome string) {
	if m != nil {
		m.SnapshotLookups.WithLabelValues(outcome).Inc()
	}
}

// ObserveEnrichLatency records the duration of an enrichment pass.
func (m *Metrics) ObserveEnrichLatency(d time.Duration) {
	if m != nil {
		m.EnrichLatency.Observe(d.Seconds())
	}
}
