package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comic_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_gallery_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comic_gallery_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Import metrics
var (
	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_gallery_import_runs_total",
			Help: "Total number of upload imports by outcome",
		},
		[]string{"status"}, // "succeeded", "failed", "rejected"
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "comic_gallery_import_duration_seconds",
			Help:    "Duration of upload imports in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ImportLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_import_last_timestamp",
			Help: "Unix timestamp of the last successful import",
		},
	)

	ImportInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_import_in_progress",
			Help: "Whether an import is currently running (1 = running, 0 = idle)",
		},
	)

	ArchiveEntriesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_gallery_archive_entries_extracted_total",
			Help: "Total number of archive entries written during extraction",
		},
	)

	ArchiveBytesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_gallery_archive_bytes_extracted_total",
			Help: "Total number of bytes written during extraction",
		},
	)

	ArchiveUnsafeEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_gallery_archive_unsafe_entries_total",
			Help: "Total number of archives rejected for an entry escaping the destination",
		},
	)

	CatalogParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_gallery_catalog_parse_failures_total",
			Help: "Total number of XML documents that failed to parse",
		},
		[]string{"document"}, // "catalog", "groups"
	)

	ImagesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_gallery_images_copied_total",
			Help: "Total number of image files copied into group directories",
		},
	)
)

// Gallery metrics
var (
	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_catalog_items",
			Help: "Number of items in the current catalog",
		},
	)

	CatalogGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_catalog_groups",
			Help: "Number of groups in the current catalog",
		},
	)

	CatalogTags = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_catalog_tags",
			Help: "Number of distinct tags in the current catalog",
		},
	)

	ImportsRecorded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_imports_recorded",
			Help: "Number of import runs held in the history store",
		},
	)

	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_gallery_search_queries_total",
			Help: "Total number of search queries by scope",
		},
		[]string{"scope"},
	)

	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comic_gallery_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"scope"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comic_gallery_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_gallery_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comic_gallery_memory_paused",
			Help: "Whether image copies are paused for memory pressure (1 = paused, 0 = running)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_gallery_memory_gc_pauses_total",
			Help: "Total number of times image copies paused for memory pressure",
		},
	)
)

// App info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "comic_gallery_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
