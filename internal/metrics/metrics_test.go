package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestImportMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ImportRunsTotal", ImportRunsTotal},
		{"ImportDuration", ImportDuration},
		{"ImportLastTimestamp", ImportLastTimestamp},
		{"ImportInProgress", ImportInProgress},
		{"ArchiveEntriesExtracted", ArchiveEntriesExtracted},
		{"ArchiveBytesExtracted", ArchiveBytesExtracted},
		{"ArchiveUnsafeEntries", ArchiveUnsafeEntries},
		{"CatalogParseFailures", CatalogParseFailures},
		{"ImagesCopied", ImagesCopied},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"MemoryGCPauses", MemoryGCPauses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	if n := testutil.CollectAndCount(ImportRunsTotal); n != 3 {
		t.Errorf("ImportRunsTotal series = %d, want 3", n)
	}
	if n := testutil.CollectAndCount(SearchQueriesTotal); n < 4 {
		t.Errorf("SearchQueriesTotal series = %d, want at least 4", n)
	}
	if n := testutil.CollectAndCount(CatalogParseFailures); n != 2 {
		t.Errorf("CatalogParseFailures series = %d, want 2", n)
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("images", "copy"))
	obs.ObserveOperation("images", "copy", 0.01, nil)
	obs.ObserveOperation("images", "copy", 0.02, errors.New("disk full"))
	after := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("images", "copy"))

	if after-before != 1 {
		t.Errorf("error counter moved by %v, want 1", after-before)
	}
}
