package pipeline

import (
	"sync"
	"time"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/source"
)

// DefaultStaleAfter is how long cached stats are served before a recompute.
const DefaultStaleAfter = 30 * time.Second

// Options configures a StatsCache.
type Options struct {
	Root         string // Claude projects directory
	RegistryPath string // project registry, reloaded on every recompute
	Costs        config.CostModel
	StaleAfter   time.Duration // 0 = DefaultStaleAfter
	MaxAgeDays   int           // 0 = all-time
	Now          func() time.Time
}

// StatsCache serves aggregated stats, recomputing them from the full log
// corpus when the stored value is older than StaleAfter.
//
// The stored stats and their timestamp are the only shared state. Compute
// runs outside the lock and each store replaces the previous value whole;
// with concurrent refreshes the last writer wins. A Get that finds a store
// in progress does not wait for it and recomputes instead.
type StatsCache struct {
	opts Options

	mu         sync.RWMutex
	stats      model.AggregatedStats
	readStats  ReadStats
	computedAt time.Time
	valid      bool
}

// NewStatsCache returns an empty cache. The first Get computes.
func NewStatsCache(opts Options) *StatsCache {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &StatsCache{opts: opts}
}

// Get returns the cached stats if fresh, otherwise recomputes and stores.
// The returned maps are shared with other callers and must not be modified.
func (c *StatsCache) Get() model.AggregatedStats {
	if stats, ok := c.cached(); ok {
		return stats
	}
	return c.Refresh()
}

// cached returns the stored stats when they are fresh and the read lock is
// immediately available. Lock contention counts as a miss.
func (c *StatsCache) cached() (model.AggregatedStats, bool) {
	if !c.mu.TryRLock() {
		return model.AggregatedStats{}, false
	}
	defer c.mu.RUnlock()

	if !c.valid || c.opts.Now().Sub(c.computedAt) >= c.opts.StaleAfter {
		return model.AggregatedStats{}, false
	}
	return c.stats, true
}

// Refresh recomputes unconditionally and stores the result.
func (c *StatsCache) Refresh() model.AggregatedStats {
	now := c.opts.Now()
	entries, rs := ReadEntries(c.opts.Root, source.LoadRegistry(c.opts.RegistryPath), ReadOptions{
		MaxAgeDays: c.opts.MaxAgeDays,
		Now:        now,
	})
	stats := Compute(entries, now, c.opts.Costs)

	c.mu.Lock()
	c.stats = stats
	c.readStats = rs
	c.computedAt = c.opts.Now()
	c.valid = true
	c.mu.Unlock()

	return stats
}

// ComputedAt returns when the stored stats were computed; zero before the first compute.
func (c *StatsCache) ComputedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.computedAt
}

// LastReadStats returns the file and line counts of the last recompute.
func (c *StatsCache) LastReadStats() ReadStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readStats
}

// Entries reads the corpus limited to the last days (0 = all). It bypasses
// the cache.
func (c *StatsCache) Entries(days int) []model.UsageRecord {
	entries, _ := ReadEntries(c.opts.Root, source.LoadRegistry(c.opts.RegistryPath), ReadOptions{
		MaxAgeDays: days,
		Now:        c.opts.Now(),
	})
	return entries
}

// Charts builds chart series for the last days (0 = all). It bypasses the cache.
func (c *StatsCache) Charts(days int) model.ChartData {
	return BuildCharts(c.Entries(days), c.opts.Costs)
}

// Costs returns the cost model the cache prices records with.
func (c *StatsCache) Costs() config.CostModel {
	return c.opts.Costs
}

// Files lists the session files under the root, newest first.
func (c *StatsCache) Files() []source.DiscoveredFile {
	return source.Scan(c.opts.Root, source.LoadRegistry(c.opts.RegistryPath))
}
