package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jsonidx"

// Bulk load and query Prometheus metrics.
var (
	BulkBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_batches_total",
			Help:      "Total number of pipelined write batches",
		},
		[]string{"status"}, // "ok" / "failed"
	)

	BulkDocumentsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_documents_written_total",
			Help:      "Documents acknowledged by the store during bulk loads",
		},
	)

	BulkBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bulk_batch_duration_seconds",
			Help:      "Time from session acquire to session release per batch",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_requests_total",
			Help:      "Total number of search and aggregate requests",
		},
		[]string{"kind", "status"}, // kind: "search" / "aggregate" / "suggest"
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Search and aggregate round trip in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"},
	)

	IndexReadyWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_ready_wait_seconds",
			Help:      "Time spent waiting for background indexing to finish",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var registerOnce sync.Once

// RegisterStoreMetrics registers bulk load and query metrics with the default
// registry. Safe to call more than once.
func RegisterStoreMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BulkBatchesTotal,
			BulkDocumentsWritten,
			BulkBatchDuration,
			QueryRequestsTotal,
			QueryDuration,
			IndexReadyWait,
		)
	})
}

// ObserveBatch records one flushed or failed batch.
func ObserveBatch(docs int, d time.Duration, err error) {
	BulkBatchDuration.Observe(d.Seconds())
	if err != nil {
		BulkBatchesTotal.WithLabelValues("failed").Inc()
		return
	}
	BulkBatchesTotal.WithLabelValues("ok").Inc()
	BulkDocumentsWritten.Add(float64(docs))
}

// ObserveQuery records one search, aggregate or suggest round trip.
func ObserveQuery(kind string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	QueryRequestsTotal.WithLabelValues(kind, status).Inc()
	QueryDuration.WithLabelValues(kind).Observe(d.Seconds())
}
