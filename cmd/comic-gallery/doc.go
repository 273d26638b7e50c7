// Package main provides the entry point for the comic gallery server.
//
// The gallery serves groups of images described by two uploaded XML
// documents: a catalog of named items with tags and picture counts, and a
// playlists file that arranges items into groups. Images arrive in a zip
// archive that is extracted, checked for path escapes, and copied into one
// directory per group.
//
// # Application Lifecycle
//
//  1. Memory Configuration: sets GOMEMLIMIT from MEMORY_LIMIT when present
//  2. Configuration Loading: reads environment variables and prepares DATA_DIR
//  3. Metrics: registers Prometheus collectors and the filesystem observer
//  4. Database Initialization: opens the SQLite import history
//  5. Component Initialization:
//     - Memory Monitor: pauses image copies while the heap is near its limit
//     - Catalog Store: holds the current catalog snapshot (empty at startup)
//     - Engine: image association and search over the store
//     - Importer: serialized upload pipeline
//     - Metrics Collector: refreshes catalog and history gauges every minute
//  6. HTTP Server Setup: routes, metrics, access logging and compression
//  7. Graceful Shutdown: handles SIGINT/SIGTERM and stops components in order
//
// # Catalog Persistence
//
// The catalog lives in memory and is lost on restart. Extracted images stay
// on disk until the next upload replaces them, and the import history
// survives restarts when DATABASE_PATH points at a file.
//
// # Environment Variables
//
//   - DATA_DIR: root for uploads/ and images/ (default: ./data)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - DATABASE_PATH: SQLite file for import history (default: in-memory)
//   - MAX_UPLOAD_SIZE: upload request limit, e.g. 512MB (default: 512MB)
//   - COPY_WORKERS: concurrent image copies during import
//   - MEMORY_LIMIT, MEMORY_RATIO: container memory limit and heap share
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//   - LOG_STATIC_FILES: log image requests (default: false)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
package main
