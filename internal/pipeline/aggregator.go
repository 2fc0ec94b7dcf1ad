// Package pipeline turns session logs into deduplicated usage records and
// aggregates them into statistics and chart series.
package pipeline

import (
	"time"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
)

// BurnWindow is the trailing window the burn rate is measured over.
const BurnWindow = 30 * time.Minute

// Compute aggregates entries in a single pass. entries are expected in
// ascending timestamp order, as ReadEntries returns them; the burn-rate
// divisor is taken from the first record inside the window.
func Compute(entries []model.UsageRecord, now time.Time, costs config.CostModel) model.AggregatedStats {
	now = now.UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	currentBlock := model.BlockKeyOf(now)
	burnStart := now.Add(-BurnWindow)

	stats := model.NewAggregatedStats()
	blocks := make(map[model.BlockKey]struct{})
	todayBlocks := make(map[model.BlockKey]struct{})

	var (
		burnTokens  int64
		burnCost    float64
		burnMinutes int64
	)

	for _, e := range entries {
		cost := costs.Cost(e)
		block := model.BlockKeyOf(e.Timestamp)

		stats.TotalInputTokens += e.InputTokens
		stats.TotalOutputTokens += e.OutputTokens
		stats.TotalCacheCreationTokens += e.CacheCreationTokens
		stats.TotalCacheReadTokens += e.CacheReadTokens
		stats.TotalCost += cost
		stats.TotalMessagesCount++
		blocks[block] = struct{}{}

		if !e.Timestamp.Before(todayStart) {
			stats.TodayInputTokens += e.InputTokens
			stats.TodayOutputTokens += e.OutputTokens
			stats.TodayCacheCreationTokens += e.CacheCreationTokens
			stats.TodayCacheReadTokens += e.CacheReadTokens
			stats.TodayCost += cost
			stats.TodayMessagesCount++
			todayBlocks[block] = struct{}{}
		}

		if block == currentBlock {
			stats.CurrentSessionTokens += e.TotalTokens()
			stats.CurrentSessionCost += cost
		}

		if !e.Timestamp.Before(burnStart) {
			burnTokens += e.TotalTokens()
			burnCost += cost
			if burnMinutes == 0 {
				burnMinutes = max(1, int64(now.Sub(e.Timestamp)/time.Minute))
			}
		}

		ms := stats.ByModel[e.Model]
		ms.InputTokens += e.InputTokens
		ms.OutputTokens += e.OutputTokens
		ms.CacheCreationTokens += e.CacheCreationTokens
		ms.CacheReadTokens += e.CacheReadTokens
		ms.Cost += cost
		ms.MessageCount++
		stats.ByModel[e.Model] = ms

		ps := stats.ByProject[e.Project]
		ps.Name = e.Project
		ps.InputTokens += e.InputTokens
		ps.OutputTokens += e.OutputTokens
		ps.CacheCreationTokens += e.CacheCreationTokens
		ps.CacheReadTokens += e.CacheReadTokens
		ps.Cost += cost
		ps.MessageCount++
		stats.ByProject[e.Project] = ps
	}

	stats.TotalSessionCount = len(blocks)
	stats.TodaySessionCount = len(todayBlocks)

	if burnMinutes > 0 {
		stats.TokensPerMinute = float64(burnTokens) / float64(burnMinutes)
		stats.CostPerHour = burnCost / float64(burnMinutes) * 60
	}

	stats.LastUpdated = now
	return stats
}
