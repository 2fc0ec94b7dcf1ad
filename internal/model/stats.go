package model

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// ModelStats holds per-model totals.
type ModelStats struct {
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	Cost                float64 `json:"cost"`
	MessageCount        int64   `json:"message_count"`
}

// TotalTokens returns input plus output tokens.
func (m ModelStats) TotalTokens() int64 {
	return m.InputTokens + m.OutputTokens
}

// ProjectStats holds per-project totals.
type ProjectStats struct {
	Name                string  `json:"name"`
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	Cost                float64 `json:"cost"`
	MessageCount        int64   `json:"message_count"`
}

// TotalTokens returns input plus output tokens.
func (p ProjectStats) TotalTokens() int64 {
	return p.InputTokens + p.OutputTokens
}

// AggregatedStats is the full statistics bundle produced by one aggregation
// pass. It is rebuilt from scratch on every refresh.
type AggregatedStats struct {
	TotalInputTokens         int64   `json:"total_input_tokens"`
	TotalOutputTokens        int64   `json:"total_output_tokens"`
	TotalCacheCreationTokens int64   `json:"total_cache_creation_tokens"`
	TotalCacheReadTokens     int64   `json:"total_cache_read_tokens"`
	TotalCost                float64 `json:"total_cost"`
	TotalMessagesCount       int64   `json:"total_messages_count"`

	TodayInputTokens         int64   `json:"today_input_tokens"`
	TodayOutputTokens        int64   `json:"today_output_tokens"`
	TodayCacheCreationTokens int64   `json:"today_cache_creation_tokens"`
	TodayCacheReadTokens     int64   `json:"today_cache_read_tokens"`
	TodayCost                float64 `json:"today_cost"`
	TodayMessagesCount       int64   `json:"today_messages_count"`

	// Current 5-hour session block.
	CurrentSessionTokens int64   `json:"current_session_tokens"`
	CurrentSessionCost   float64 `json:"current_session_cost"`

	// Distinct 5-hour blocks with at least one record.
	TotalSessionCount int `json:"total_session_count"`
	TodaySessionCount int `json:"today_session_count"`

	// Trailing 30-minute burn rate.
	TokensPerMinute float64 `json:"tokens_per_minute"`
	CostPerHour     float64 `json:"cost_per_hour"`

	ByModel   map[string]ModelStats   `json:"by_model"`
	ByProject map[string]ProjectStats `json:"by_project"`

	LastUpdated time.Time `json:"last_updated"`
}

// NewAggregatedStats returns zeroed stats with initialized maps.
func NewAggregatedStats() AggregatedStats {
	return AggregatedStats{
		ByModel:   make(map[string]ModelStats),
		ByProject: make(map[string]ProjectStats),
	}
}

// TotalTokens returns all-time input plus output tokens.
func (s AggregatedStats) TotalTokens() int64 {
	return s.TotalInputTokens + s.TotalOutputTokens
}

// TodayTokens returns today's input plus output tokens.
func (s AggregatedStats) TodayTokens() int64 {
	return s.TodayInputTokens + s.TodayOutputTokens
}

// CacheHitRate returns cache reads as a percentage of input plus cache reads.
func (s AggregatedStats) CacheHitRate() float64 {
	total := s.TotalInputTokens + s.TotalCacheReadTokens
	if total == 0 {
		return 0
	}
	return float64(s.TotalCacheReadTokens) / float64(total) * 100
}

// ModelsByCost returns the model names in ByModel, most expensive first,
// ties broken by name.
func (s AggregatedStats) ModelsByCost() []string {
	return keysByCost(s.ByModel, func(m ModelStats) float64 { return m.Cost })
}

// ProjectsByCost returns the project identifiers in ByProject, most
// expensive first, ties broken by name.
func (s AggregatedStats) ProjectsByCost() []string {
	return keysByCost(s.ByProject, func(p ProjectStats) float64 { return p.Cost })
}

func keysByCost[V any](m map[string]V, cost func(V) float64) []string {
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := cost(m[keys[i]]), cost(m[keys[j]])
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	return keys
}
