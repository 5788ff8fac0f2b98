package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ScanRunsTotal", ScanRunsTotal},
		{"ScanDuration", ScanDuration},
		{"ScanLastRunTimestamp", ScanLastRunTimestamp},
		{"ScanInProgress", ScanInProgress},
		{"ScanItemsTotal", ScanItemsTotal},
		{"SyncTotal", SyncTotal},
		{"SyncDuration", SyncDuration},
		{"CatalogRetryAttempts", CatalogRetryAttempts},
		{"CatalogRetryFailures", CatalogRetryFailures},
		{"CatalogItems", CatalogItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestMetricsRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, name := range []string{
		"nfosync_scan_duration_seconds",
		"nfosync_scan_last_run_timestamp_seconds",
		"nfosync_scan_in_progress",
		"nfosync_catalog_items",
	} {
		if !names[name] {
			t.Errorf("Expected metric '%s' to be registered", name)
		}
	}
}
