package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/claudit/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T) (*StatsCache, *fakeClock, string) {
	t.Helper()
	root := t.TempDir()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewStatsCache(Options{
		Root:  root,
		Costs: config.DefaultCostModel(),
		Now:   clock.Now,
	})
	return cache, clock, root
}

func TestStatsCache_Staleness(t *testing.T) {
	cache, clock, root := newTestCache(t)
	ts := clock.Now().Add(-time.Hour)

	writeLog(t, root, "-p", "a", ts, entryLine("a", ts, "m", 10, 0))
	if got := cache.Get().TotalInputTokens; got != 10 {
		t.Fatalf("first Get = %d, want 10", got)
	}

	writeLog(t, root, "-p", "b", ts, entryLine("b", ts, "m", 5, 0))

	clock.Advance(29 * time.Second)
	if got := cache.Get().TotalInputTokens; got != 10 {
		t.Fatalf("Get within staleness window = %d, want cached 10", got)
	}

	clock.Advance(time.Second)
	if got := cache.Get().TotalInputTokens; got != 15 {
		t.Fatalf("Get at staleness boundary = %d, want recomputed 15", got)
	}
}

func TestStatsCache_RefreshAlwaysRecomputes(t *testing.T) {
	cache, clock, root := newTestCache(t)
	ts := clock.Now().Add(-time.Hour)

	writeLog(t, root, "-p", "a", ts, entryLine("a", ts, "m", 10, 0))
	_ = cache.Get()

	writeLog(t, root, "-p", "b", ts, entryLine("b", ts, "m", 5, 0))
	if got := cache.Refresh().TotalInputTokens; got != 15 {
		t.Fatalf("Refresh = %d, want 15", got)
	}
	if got := cache.Get().TotalInputTokens; got != 15 {
		t.Fatalf("Get after Refresh = %d, want stored 15", got)
	}
	if !cache.ComputedAt().Equal(clock.Now()) {
		t.Errorf("ComputedAt = %v, want %v", cache.ComputedAt(), clock.Now())
	}
	if rs := cache.LastReadStats(); rs.Files != 2 || rs.Records != 2 {
		t.Errorf("LastReadStats = %+v", rs)
	}
}

func TestStatsCache_ContentionIsMiss(t *testing.T) {
	cache, _, _ := newTestCache(t)
	_ = cache.Get()

	if _, ok := cache.cached(); !ok {
		t.Fatal("fresh cache reported a miss")
	}

	cache.mu.Lock()
	_, ok := cache.cached()
	cache.mu.Unlock()
	if ok {
		t.Fatal("cached() served a value while a store held the lock")
	}
}

func TestStatsCache_EmptyRoot(t *testing.T) {
	cache, _, _ := newTestCache(t)
	stats := cache.Get()
	if stats.TotalTokens() != 0 || stats.TotalCost != 0 {
		t.Fatalf("empty root stats = %+v", stats)
	}
}

func TestStatsCache_ConcurrentGet(t *testing.T) {
	cache, clock, root := newTestCache(t)
	ts := clock.Now().Add(-time.Hour)
	writeLog(t, root, "-p", "a", ts, entryLine("a", ts, "m", 7, 0))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := cache.Get().TotalInputTokens; got != 7 {
				t.Errorf("concurrent Get = %d, want 7", got)
			}
		}()
	}
	wg.Wait()
}

func TestStatsCache_ChartsBypassCache(t *testing.T) {
	cache, clock, root := newTestCache(t)
	now := clock.Now()

	writeLog(t, root, "-p", "a", now,
		entryLine("old", now.Add(-10*24*time.Hour), "m", 1, 0),
		entryLine("new", now.Add(-time.Hour), "m", 2, 0),
	)

	data := cache.Charts(7)
	if len(data.Daily) != 1 || data.Daily[0].InputTokens != 2 {
		t.Fatalf("Charts(7) = %+v", data.Daily)
	}
	if all := cache.Charts(0); len(all.Daily) != 2 {
		t.Fatalf("Charts(0) days = %d, want 2", len(all.Daily))
	}
}
