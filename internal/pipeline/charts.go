package pipeline

import (
	"sort"

	"github.com/samber/lo"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
)

// BuildCharts groups entries into daily, hourly, per-model and per-project
// series. Days and hours are taken from the UTC timestamp. Only days and
// hours that have records appear.
func BuildCharts(entries []model.UsageRecord, costs config.CostModel) model.ChartData {
	daily := make(map[string]*model.DailyStats)
	hourly := make(map[int]*model.HourlyStats)
	byModel := make(map[string]*model.NamedTotal)
	byProject := make(map[string]*model.NamedTotal)

	for _, e := range entries {
		cost := costs.Cost(e)
		ts := e.Timestamp.UTC()

		day := ts.Format("2006-01-02")
		ds, ok := daily[day]
		if !ok {
			ds = &model.DailyStats{Date: day}
			daily[day] = ds
		}
		ds.InputTokens += e.InputTokens
		ds.OutputTokens += e.OutputTokens
		ds.Cost += cost
		ds.Messages++

		hs, ok := hourly[ts.Hour()]
		if !ok {
			hs = &model.HourlyStats{Hour: ts.Hour()}
			hourly[ts.Hour()] = hs
		}
		hs.Tokens += e.TotalTokens()
		hs.Messages++

		addNamed(byModel, e.Model, e.TotalTokens(), cost)
		addNamed(byProject, e.Project, e.TotalTokens(), cost)
	}

	data := model.ChartData{
		Daily:     lo.Map(lo.Values(daily), func(d *model.DailyStats, _ int) model.DailyStats { return *d }),
		Hourly:    lo.Map(lo.Values(hourly), func(h *model.HourlyStats, _ int) model.HourlyStats { return *h }),
		ByModel:   sortedTotals(byModel),
		ByProject: sortedTotals(byProject),
	}

	sort.Slice(data.Daily, func(i, j int) bool {
		return data.Daily[i].Date < data.Daily[j].Date
	})
	sort.Slice(data.Hourly, func(i, j int) bool {
		return data.Hourly[i].Hour < data.Hourly[j].Hour
	})

	return data
}

func addNamed(m map[string]*model.NamedTotal, name string, tokens int64, cost float64) {
	nt, ok := m[name]
	if !ok {
		nt = &model.NamedTotal{Name: name}
		m[name] = nt
	}
	nt.Tokens += tokens
	nt.Cost += cost
}

// sortedTotals orders by tokens descending, then name for a stable display.
func sortedTotals(m map[string]*model.NamedTotal) []model.NamedTotal {
	out := lo.MapToSlice(m, func(_ string, nt *model.NamedTotal) model.NamedTotal { return *nt })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tokens != out[j].Tokens {
			return out[i].Tokens > out[j].Tokens
		}
		return out[i].Name < out[j].Name
	})
	return out
}
