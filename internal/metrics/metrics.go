// Package metrics holds the Prometheus collectors for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datagov_requests_total",
			Help: "Upstream request attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "transport_error", "retryable_status", "fatal_status", "decode_error", "circuit_open"
	)

	UpstreamCircuitOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datagov_circuit_open",
			Help: "1 while the upstream circuit breaker rejects requests",
		},
	)

	UpstreamRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datagov_retries_total",
			Help: "Number of upstream retry waits",
		},
	)

	UpstreamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datagov_request_duration_seconds",
			Help:    "Duration of single upstream attempts",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Sync runs
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Sync invocations by mode and final status",
		},
		[]string{"mode", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Wall time of sync invocations",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	RecordsSynced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_records_upserted_total",
			Help: "Performance records upserted",
		},
	)

	RecordErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_record_errors_total",
			Help: "Per-record failures by kind",
		},
		[]string{"kind"}, // "unknown_region", "persistence", "aborted"
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp_seconds",
			Help: "Unix time of the last sync that finished with status success",
		},
	)
)
