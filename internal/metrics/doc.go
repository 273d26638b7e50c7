// Package metrics provides Prometheus instrumentation for the comic gallery.
//
// All metrics are prefixed with "comic_gallery_" and registered through
// promauto at package init, so importing the package is enough to expose
// them on the default registry.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request latency by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Database Metrics
//
// The import history store records per-operation counts and latency:
//   - DBQueryTotal, DBQueryDuration, DBConnectionsOpen
//
// ## Import Metrics
//
//   - ImportRunsTotal: uploads by outcome (succeeded, failed, rejected)
//   - ImportDuration, ImportLastTimestamp, ImportInProgress
//   - ArchiveEntriesExtracted, ArchiveBytesExtracted
//   - ArchiveUnsafeEntries: archives refused for a path-escaping entry
//   - CatalogParseFailures: XML documents that did not parse
//   - ImagesCopied: files copied into group directories
//
// ## Gallery Metrics
//
// Refreshed by the Collector from a StatsProvider:
//   - CatalogItems, CatalogGroups, CatalogTags, ImportsRecorded
//
// Recorded per request by the search handlers:
//   - SearchQueriesTotal, SearchResults
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver:
//   - FilesystemOperationDuration, FilesystemOperationErrors
//
// ## Memory Metrics
//
// Set by the memory monitor that throttles image copies:
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses
//
// # Usage
//
//	metrics.InitializeMetrics()
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//
//	collector := metrics.NewCollector(statsAdapter, time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
