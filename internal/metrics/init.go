package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup.
func InitializeMetrics() {
	for _, status := range []string{"succeeded", "failed", "rejected"} {
		ImportRunsTotal.WithLabelValues(status)
	}

	for _, doc := range []string{"catalog", "groups"} {
		CatalogParseFailures.WithLabelValues(doc)
	}

	for _, scope := range []string{"all", "group", "tag", "item_name"} {
		SearchQueriesTotal.WithLabelValues(scope)
		SearchResults.WithLabelValues(scope)
	}

	volumes := []string{"uploads", "images", "unknown"}
	fsOps := []string{"readdir", "copy", "reset", "write"}
	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
	}

	for _, op := range []string{"initialize_schema", "begin_import", "finish_import",
		"recent_imports", "count_imports", "get_import", "get_metadata", "set_metadata"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
