// Package metrics exposes Prometheus counters and gauges for the indexer
// pipelines: per-stream cursor height, page fetch counts, retry counts,
// and snapshot/explorer cycle timings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CursorHeight reports the last committed height per stream.
	CursorHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "atlas",
		Subsystem: "ingest",
		Name:      "cursor_height",
		Help:      "Last committed block height per ingestion stream.",
	}, []string{"stream"})

	// PagesFetched counts successful gateway page fetches per stream.
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atlas",
		Subsystem: "ingest",
		Name:      "pages_fetched_total",
		Help:      "Gateway pages successfully fetched per ingestion stream.",
	}, []string{"stream"})

	// RetryCount counts retried gateway calls by stream and classification.
	RetryCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atlas",
		Subsystem: "ingest",
		Name:      "retries_total",
		Help:      "Gateway call retries per stream and error classification.",
	}, []string{"stream", "reason"})

	// WorkerErrors counts terminal worker errors surfaced to the supervisor.
	WorkerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atlas",
		Subsystem: "supervisor",
		Name:      "worker_errors_total",
		Help:      "Terminal errors per worker that caused it to exit.",
	}, []string{"worker"})

	// SnapshotCycleDuration observes how long one C7 cycle iteration took.
	SnapshotCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "atlas",
		Subsystem: "snapshot",
		Name:      "cycle_duration_seconds",
		Help:      "Wall-clock duration of one snapshot pipeline cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// ExplorerHeight reports the last materialized explorer row height.
	ExplorerHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "atlas",
		Subsystem: "explorer",
		Name:      "last_height",
		Help:      "Height of the most recently materialized explorer row.",
	})
)
