package config

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/theirongolddev/claudit/internal/model"
)

// CostSchedule holds USD prices per million tokens.
type CostSchedule struct {
	Input      float64 `json:"input"`
	Output     float64 `json:"output"`
	CacheRead  float64 `json:"cache_read"`
	CacheWrite float64 `json:"cache_write"`
}

// CostRule pairs a model-name predicate with the schedule it selects.
type CostRule struct {
	Name     string
	Label    string
	Match    func(model string) bool
	Schedule CostSchedule
}

// CostModel maps model names to schedules. Rules are evaluated in order and
// the first match wins; models no rule claims get the fallback schedule.
type CostModel struct {
	rules    []CostRule
	fallback CostSchedule
}

var (
	opus45Schedule  = CostSchedule{Input: 5.00, Output: 25.00, CacheRead: 0.50, CacheWrite: 6.25}
	opusSchedule    = CostSchedule{Input: 15.00, Output: 75.00, CacheRead: 1.50, CacheWrite: 18.75}
	haiku45Schedule = CostSchedule{Input: 1.00, Output: 5.00, CacheRead: 0.10, CacheWrite: 1.25}
	haiku35Schedule = CostSchedule{Input: 0.80, Output: 4.00, CacheRead: 0.08, CacheWrite: 1.00}
	haikuSchedule   = CostSchedule{Input: 0.25, Output: 1.25, CacheRead: 0.03, CacheWrite: 0.30}
	sonnetSchedule  = CostSchedule{Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75}
)

// builtinRules is order sensitive: versioned families must precede the bare
// family name they contain.
var builtinRules = []CostRule{
	{Name: "opus-4-5", Label: "Claude Opus 4.5", Match: containsAny("opus-4-5", "opus-4.5"), Schedule: opus45Schedule},
	{Name: "opus", Label: "Claude Opus 4 / 4.1 / 3", Match: containsAny("opus"), Schedule: opusSchedule},
	{Name: "haiku-4-5", Label: "Claude Haiku 4.5", Match: containsAny("haiku-4-5", "haiku-4.5"), Schedule: haiku45Schedule},
	{Name: "haiku-3-5", Label: "Claude Haiku 3.5", Match: containsAny("haiku-3-5", "haiku-3.5"), Schedule: haiku35Schedule},
	{Name: "haiku", Label: "Claude Haiku 3", Match: containsAny("haiku"), Schedule: haikuSchedule},
	{Name: "sonnet", Label: "Claude Sonnet 4 / 4.5 / 3.7", Match: containsAny("sonnet"), Schedule: sonnetSchedule},
}

var defaultCostModel = CostModel{rules: builtinRules, fallback: sonnetSchedule}

func containsAny(needles ...string) func(string) bool {
	return func(model string) bool {
		lower := strings.ToLower(model)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}
}

// DefaultCostModel returns the built-in pricing rules.
func DefaultCostModel() CostModel {
	return defaultCostModel
}

// NewCostModel returns the built-in rules preceded by user overrides. Longer
// override keys are tried first so the most specific substring wins.
func NewCostModel(overrides PricingOverrides) CostModel {
	if len(overrides.Overrides) == 0 {
		return defaultCostModel
	}

	keys := lo.Keys(overrides.Overrides)
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rules := make([]CostRule, 0, len(keys)+len(builtinRules))
	for _, key := range keys {
		o := overrides.Overrides[key]
		s := defaultCostModel.ScheduleFor(key)
		if o.InputPerMTok != nil {
			s.Input = *o.InputPerMTok
		}
		if o.OutputPerMTok != nil {
			s.Output = *o.OutputPerMTok
		}
		if o.CacheReadPerMTok != nil {
			s.CacheRead = *o.CacheReadPerMTok
		}
		if o.CacheWritePerMTok != nil {
			s.CacheWrite = *o.CacheWritePerMTok
		}
		rules = append(rules, CostRule{
			Name:     key,
			Label:    key + " (override)",
			Match:    containsAny(strings.ToLower(key)),
			Schedule: s,
		})
	}
	rules = append(rules, builtinRules...)

	return CostModel{rules: rules, fallback: sonnetSchedule}
}

// ScheduleFor returns the schedule of the first rule matching modelName.
func (m CostModel) ScheduleFor(modelName string) CostSchedule {
	for _, r := range m.rules {
		if r.Match(modelName) {
			return r.Schedule
		}
	}
	if m.rules == nil {
		return defaultCostModel.ScheduleFor(modelName)
	}
	return m.fallback
}

// Cost computes the estimated USD cost of a single record.
func (m CostModel) Cost(r model.UsageRecord) float64 {
	return m.CalculateCost(r.Model, r.InputTokens, r.OutputTokens, r.CacheCreationTokens, r.CacheReadTokens)
}

// CalculateCost computes the estimated USD cost for a set of token counts.
func (m CostModel) CalculateCost(modelName string, input, output, cacheWrite, cacheRead int64) float64 {
	s := m.ScheduleFor(modelName)
	cost := float64(input) * s.Input / 1_000_000
	cost += float64(output) * s.Output / 1_000_000
	cost += float64(cacheRead) * s.CacheRead / 1_000_000
	cost += float64(cacheWrite) * s.CacheWrite / 1_000_000
	return cost
}

// Rules returns the rule names in evaluation order.
func (m CostModel) Rules() []string {
	rules := m.rules
	if rules == nil {
		rules = builtinRules
	}
	return lo.Map(rules, func(r CostRule, _ int) string { return r.Name })
}

// ScheduleFor returns the built-in schedule for a model.
func ScheduleFor(modelName string) CostSchedule {
	return defaultCostModel.ScheduleFor(modelName)
}

// CostOf computes a record's cost with the built-in schedules.
func CostOf(r model.UsageRecord) float64 {
	return defaultCostModel.Cost(r)
}

// PricingRow is one line of the displayed pricing table.
type PricingRow struct {
	Family   string       `json:"family"`
	Label    string       `json:"label"`
	Schedule CostSchedule `json:"schedule"`
}

// PricingTable returns the schedule of every rule in m, fallback last.
func (m CostModel) PricingTable() []PricingRow {
	rules := m.rules
	if rules == nil {
		rules = builtinRules
	}
	rows := lo.Map(rules, func(r CostRule, _ int) PricingRow {
		return PricingRow{Family: r.Name, Label: r.Label, Schedule: r.Schedule}
	})
	return append(rows, PricingRow{Family: "default", Label: "Other models", Schedule: m.fallbackOrDefault()})
}

func (m CostModel) fallbackOrDefault() CostSchedule {
	if m.rules == nil {
		return defaultCostModel.fallback
	}
	return m.fallback
}

// PricingTable returns the built-in pricing table.
func PricingTable() []PricingRow {
	return defaultCostModel.PricingTable()
}
