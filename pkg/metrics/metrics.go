// Package metrics holds the Prometheus instrumentation of the sync engine.
// All metrics are prefixed with "nfosync_".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfosync_scan_runs_total",
			Help: "Total number of library scans by final state",
		},
		[]string{"state"}, // "completed", "cancelled", "failed"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nfosync_scan_duration_seconds",
			Help:    "Duration of library scans in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 1800},
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfosync_scan_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last finished scan",
		},
	)

	ScanInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfosync_scan_in_progress",
			Help: "Whether a scan is currently running (1) or not (0)",
		},
	)

	ScanItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfosync_scan_items_total",
			Help: "Sidecars seen by scans by outcome",
		},
		[]string{"outcome"}, // "processed", "skipped", "conflict", "error"
	)
)

// Sync metrics
var (
	SyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfosync_sync_total",
			Help: "Per-item synchronizations by result",
		},
		[]string{"result"}, // "updated", "unchanged", "failed"
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfosync_sync_duration_seconds",
			Help:    "Per-item synchronization duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"}, // "resolving", "parsing", "persisting"
	)
)

// Catalog metrics
var (
	CatalogRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfosync_catalog_retry_attempts_total",
			Help: "Catalog write retries after transient conflicts",
		},
		[]string{"operation"},
	)

	CatalogRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfosync_catalog_retry_failures_total",
			Help: "Catalog writes that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfosync_catalog_items",
			Help: "Number of items in the catalog after the last scan",
		},
	)
)
