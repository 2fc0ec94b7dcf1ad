package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
)

func TestCompute_DayBoundary(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 10, 0, 0, time.UTC)
	entries := []model.UsageRecord{
		rec(time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC), "m", "p", 10, 1),
		rec(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "m", "p", 20, 2),
	}

	stats := Compute(entries, now, config.DefaultCostModel())
	if stats.TodayInputTokens != 20 || stats.TodayOutputTokens != 2 || stats.TodayMessagesCount != 1 {
		t.Fatalf("today = in %d out %d msgs %d; want 20/2/1",
			stats.TodayInputTokens, stats.TodayOutputTokens, stats.TodayMessagesCount)
	}
	if stats.TotalMessagesCount != 2 {
		t.Errorf("TotalMessagesCount = %d, want 2", stats.TotalMessagesCount)
	}
}

func TestCompute_DayBoundaryUsesUTC(t *testing.T) {
	// 01:00 at UTC+2 on June 2 is still June 1 in UTC.
	east := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 6, 2, 1, 0, 0, 0, east)
	entries := []model.UsageRecord{
		rec(time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC), "m", "p", 10, 0),
	}

	stats := Compute(entries, now, config.DefaultCostModel())
	if stats.TodayInputTokens != 10 {
		t.Fatalf("TodayInputTokens = %d, want 10 (same UTC day)", stats.TodayInputTokens)
	}
}

func TestCompute_SessionBlocks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC) // block 2: 10:00-14:59
	entries := []model.UsageRecord{
		rec(time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC), "m", "p", 1, 0), // same block index, other day
		rec(time.Date(2025, 6, 1, 9, 59, 59, 0, time.UTC), "m", "p", 2, 0),
		rec(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), "m", "p", 4, 0),
		rec(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), "m", "p", 8, 16),
	}

	stats := Compute(entries, now, config.DefaultCostModel())
	if stats.CurrentSessionTokens != 4+8+16 {
		t.Errorf("CurrentSessionTokens = %d, want %d", stats.CurrentSessionTokens, 4+8+16)
	}
	if stats.TotalSessionCount != 3 {
		t.Errorf("TotalSessionCount = %d, want 3", stats.TotalSessionCount)
	}
	if stats.TodaySessionCount != 2 {
		t.Errorf("TodaySessionCount = %d, want 2", stats.TodaySessionCount)
	}
}

func TestCompute_BlockPartition(t *testing.T) {
	// Every record falls into exactly one block; summing the current-block
	// tokens over each block's reference time recovers the total.
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var entries []model.UsageRecord
	for h := range 24 {
		entries = append(entries, rec(day.Add(time.Duration(h)*time.Hour+17*time.Minute), "m", "p", int64(h+1), 1))
	}

	costs := config.DefaultCostModel()
	var sum int64
	for block := range 5 {
		ref := day.Add(time.Duration(block*5) * time.Hour)
		sum += Compute(entries, ref, costs).CurrentSessionTokens
	}

	total := Compute(entries, day, costs)
	if sum != total.TotalTokens() {
		t.Fatalf("sum over blocks = %d, total = %d", sum, total.TotalTokens())
	}
	if total.TotalSessionCount != 5 {
		t.Errorf("TotalSessionCount = %d, want 5", total.TotalSessionCount)
	}
}

func TestCompute_BurnRate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []model.UsageRecord{
		rec(now.Add(-40*time.Minute), "claude-sonnet-4", "p", 1_000_000, 0), // outside window
		rec(now.Add(-20*time.Minute), "claude-sonnet-4", "p", 1000, 1000),
		rec(now.Add(-5*time.Minute), "claude-sonnet-4", "p", 2000, 0),
	}

	stats := Compute(entries, now, config.DefaultCostModel())

	wantTPM := float64(1000+1000+2000) / 20
	if !approx(stats.TokensPerMinute, wantTPM) {
		t.Errorf("TokensPerMinute = %f, want %f", stats.TokensPerMinute, wantTPM)
	}

	windowCost := (1000*3.0 + 1000*15.0 + 2000*3.0) / 1_000_000
	wantCPH := windowCost / 20 * 60
	if !approx(stats.CostPerHour, wantCPH) {
		t.Errorf("CostPerHour = %f, want %f", stats.CostPerHour, wantCPH)
	}
}

func TestCompute_BurnRateEdges(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []model.UsageRecord
		wantTPM float64
	}{
		{
			name:    "no window records",
			entries: []model.UsageRecord{rec(now.Add(-31*time.Minute), "m", "p", 100, 0)},
			wantTPM: 0,
		},
		{
			name:    "window start inclusive",
			entries: []model.UsageRecord{rec(now.Add(-30*time.Minute), "m", "p", 300, 0)},
			wantTPM: 10,
		},
		{
			name:    "divisor floors to whole minutes",
			entries: []model.UsageRecord{rec(now.Add(-10*time.Minute-50*time.Second), "m", "p", 100, 0)},
			wantTPM: 10,
		},
		{
			name:    "divisor at least one minute",
			entries: []model.UsageRecord{rec(now.Add(-10*time.Second), "m", "p", 42, 0)},
			wantTPM: 42,
		},
		{
			name:    "cache tokens excluded",
			entries: []model.UsageRecord{{Timestamp: now.Add(-2 * time.Minute), Model: "m", InputTokens: 10, CacheReadTokens: 1000}},
			wantTPM: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := Compute(tt.entries, now, config.DefaultCostModel())
			if !approx(stats.TokensPerMinute, tt.wantTPM) {
				t.Errorf("TokensPerMinute = %f, want %f", stats.TokensPerMinute, tt.wantTPM)
			}
			if tt.wantTPM == 0 && stats.CostPerHour != 0 {
				t.Errorf("CostPerHour = %f, want 0", stats.CostPerHour)
			}
		})
	}
}

func TestCompute_Breakdowns(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []model.UsageRecord{
		rec(now.Add(-3*time.Hour), "claude-sonnet-4", "/a", 100, 10),
		rec(now.Add(-2*time.Hour), "claude-opus-4", "/a", 200, 20),
		rec(now.Add(-1*time.Hour), "claude-sonnet-4", "/b", 300, 30),
	}
	entries[0].CacheReadTokens = 1000

	costs := config.DefaultCostModel()
	stats := Compute(entries, now, costs)

	sonnet := stats.ByModel["claude-sonnet-4"]
	if sonnet.MessageCount != 2 || sonnet.InputTokens != 400 || sonnet.CacheReadTokens != 1000 {
		t.Errorf("sonnet = %+v", sonnet)
	}
	a := stats.ByProject["/a"]
	if a.Name != "/a" || a.MessageCount != 2 || a.OutputTokens != 30 {
		t.Errorf("project /a = %+v", a)
	}

	var sum float64
	for _, e := range entries {
		sum += costs.Cost(e)
	}
	if !approx(stats.TotalCost, sum) {
		t.Errorf("TotalCost = %f, sum of record costs = %f", stats.TotalCost, sum)
	}

	var modelSum float64
	for _, m := range stats.ByModel {
		modelSum += m.Cost
	}
	if !approx(modelSum, stats.TotalCost) {
		t.Errorf("per-model cost sum = %f, total = %f", modelSum, stats.TotalCost)
	}

	if !stats.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", stats.LastUpdated, now)
	}

	wantHit := 1000.0 / (600 + 1000) * 100
	if !approx(stats.CacheHitRate(), wantHit) {
		t.Errorf("CacheHitRate = %f, want %f", stats.CacheHitRate(), wantHit)
	}
}

func TestCompute_Haiku3Scenario(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []model.UsageRecord{rec(now.Add(-time.Hour), "claude-3-haiku", "p", 1_000_000, 1_000_000)}

	stats := Compute(entries, now, config.DefaultCostModel())
	if !approx(stats.TotalCost, 1.50) {
		t.Fatalf("TotalCost = %f, want 1.50", stats.TotalCost)
	}
}
