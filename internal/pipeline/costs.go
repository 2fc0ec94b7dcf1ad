package pipeline

import (
	"sort"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
)

// TokenTypeCosts holds aggregate costs split by token type.
type TokenTypeCosts struct {
	InputCost      float64 `json:"input_cost"`
	OutputCost     float64 `json:"output_cost"`
	CacheWriteCost float64 `json:"cache_write_cost"`
	CacheReadCost  float64 `json:"cache_read_cost"`
	TotalCost      float64 `json:"total_cost"`
}

// CacheCost returns cache read plus cache write cost.
func (c TokenTypeCosts) CacheCost() float64 {
	return c.CacheWriteCost + c.CacheReadCost
}

// ModelCostBreakdown holds cost components for one model.
type ModelCostBreakdown struct {
	Model string `json:"model"`
	TokenTypeCosts
	// CacheSavings is what cache reads would have cost at the input rate,
	// minus what they did cost.
	CacheSavings float64 `json:"cache_savings"`
}

// AggregateCostBreakdown splits the cost of entries by token type, overall
// and per model. Rows are ordered by total cost, most expensive first.
func AggregateCostBreakdown(entries []model.UsageRecord, costs config.CostModel) (TokenTypeCosts, []ModelCostBreakdown) {
	var totals TokenTypeCosts
	byModel := make(map[string]*ModelCostBreakdown)

	for _, e := range entries {
		s := costs.ScheduleFor(e.Model)

		inputCost := float64(e.InputTokens) * s.Input / 1_000_000
		outputCost := float64(e.OutputTokens) * s.Output / 1_000_000
		cacheWriteCost := float64(e.CacheCreationTokens) * s.CacheWrite / 1_000_000
		cacheReadCost := float64(e.CacheReadTokens) * s.CacheRead / 1_000_000

		totals.InputCost += inputCost
		totals.OutputCost += outputCost
		totals.CacheWriteCost += cacheWriteCost
		totals.CacheReadCost += cacheReadCost

		row, exists := byModel[e.Model]
		if !exists {
			row = &ModelCostBreakdown{Model: e.Model}
			byModel[e.Model] = row
		}
		row.InputCost += inputCost
		row.OutputCost += outputCost
		row.CacheWriteCost += cacheWriteCost
		row.CacheReadCost += cacheReadCost
		row.CacheSavings += float64(e.CacheReadTokens) * (s.Input - s.CacheRead) / 1_000_000
	}

	totals.TotalCost = totals.InputCost + totals.OutputCost + totals.CacheCost()

	modelRows := make([]ModelCostBreakdown, 0, len(byModel))
	for _, row := range byModel {
		row.TotalCost = row.InputCost + row.OutputCost + row.CacheCost()
		modelRows = append(modelRows, *row)
	}

	sort.Slice(modelRows, func(i, j int) bool {
		if modelRows[i].TotalCost != modelRows[j].TotalCost {
			return modelRows[i].TotalCost > modelRows[j].TotalCost
		}
		return modelRows[i].Model < modelRows[j].Model
	})

	return totals, modelRows
}
