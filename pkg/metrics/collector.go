package metrics

import (
	"time"

	"github.com/agentdocs/agentdocs/pkg/storage"
)

// StatsSource provides entity counts for the gauges below. Satisfied by
// *storage.BoltStore.
type StatsSource interface {
	Stats() (storage.Stats, error)
}

// Collector refreshes entity gauges from storage on a fixed interval
type Collector struct {
	source StatsSource
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	stats, err := c.source.Stats()
	if err != nil {
		return
	}
	WorkspacesTotal.Set(float64(stats.Workspaces))
	DocumentsTotal.Set(float64(stats.Documents))
	VersionsTotal.Set(float64(stats.Versions))
	CommentsTotal.Set(float64(stats.Comments))
}
