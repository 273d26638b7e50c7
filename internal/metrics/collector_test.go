package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	mu    sync.Mutex
	stats Stats
	calls int
}

func (m *mockStatsProvider) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestCollectorCollectSetsGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		TotalItems:   12,
		TotalGroups:  3,
		TotalTags:    7,
		TotalImports: 2,
	}}

	c := NewCollector(provider, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(CatalogItems); got != 12 {
		t.Errorf("CatalogItems = %v, want 12", got)
	}
	if got := testutil.ToFloat64(CatalogGroups); got != 3 {
		t.Errorf("CatalogGroups = %v, want 3", got)
	}
	if got := testutil.ToFloat64(CatalogTags); got != 7 {
		t.Errorf("CatalogTags = %v, want 7", got)
	}
	if got := testutil.ToFloat64(ImportsRecorded); got != 2 {
		t.Errorf("ImportsRecorded = %v, want 2", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect panicked with nil provider: %v", r)
		}
	}()
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{}
	c := NewCollector(provider, 10*time.Millisecond)

	c.Start()
	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.callCount() < 2 {
		t.Errorf("expected at least 2 collections, got %d", provider.callCount())
	}
}
