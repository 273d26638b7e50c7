package metrics

import (
	"time"

	"comic-gallery/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	TotalItems   int
	TotalGroups  int
	TotalTags    int
	TotalImports int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogItems.Set(float64(stats.TotalItems))
	CatalogGroups.Set(float64(stats.TotalGroups))
	CatalogTags.Set(float64(stats.TotalTags))
	ImportsRecorded.Set(float64(stats.TotalImports))

	logging.Debug("Metrics collected: items=%d, groups=%d, tags=%d, imports=%d",
		stats.TotalItems, stats.TotalGroups, stats.TotalTags, stats.TotalImports)
}
