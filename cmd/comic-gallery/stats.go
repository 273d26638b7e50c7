package main

import (
	"context"
	"time"

	"comic-gallery/internal/gallery"
	"comic-gallery/internal/logging"
	"comic-gallery/internal/metrics"
)

const statsTimeout = 5 * time.Second

// importCounter is the part of the history database the collector reads.
type importCounter interface {
	CountImports(ctx context.Context) (int, error)
	UpdateDBMetrics()
}

// statsAdapter feeds catalog and history counts to the metrics collector.
type statsAdapter struct {
	engine *gallery.Engine
	db     importCounter
}

// GetStats implements metrics.StatsProvider
func (a *statsAdapter) GetStats() metrics.Stats {
	snap := a.engine.Snapshot()
	stats := metrics.Stats{
		TotalItems:  len(snap.Items),
		TotalGroups: len(snap.Groups),
		TotalTags:   len(a.engine.Tags()),
	}

	if a.db == nil {
		return stats
	}
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	n, err := a.db.CountImports(ctx)
	if err != nil {
		logging.Warn("Failed to count imports for metrics: %v", err)
	}
	stats.TotalImports = n
	a.db.UpdateDBMetrics()
	return stats
}
