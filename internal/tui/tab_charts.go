package tui

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/tui/components"
	"github.com/theirongolddev/claudit/internal/tui/theme"
)

func (a App) renderChartsTab(cw int) string {
	t := theme.Active
	daily := a.charts.Daily
	var b strings.Builder

	if len(daily) == 0 {
		return components.ContentCard("Daily Token Usage", "No usage in this window", cw)
	}

	tokens := lo.Map(daily, func(d model.DailyStats, _ int) float64 {
		return float64(d.InputTokens + d.OutputTokens)
	})
	dates := lo.Map(daily, func(d model.DailyStats, _ int) string { return d.Date })

	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Daily Token Usage (%dd)", a.opts.Days),
		components.BarChart(tokens, chartDateLabels(dates), t.Blue, components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	hourly := make([]float64, 24)
	for _, h := range a.charts.Hourly {
		if h.Hour >= 0 && h.Hour < 24 {
			hourly[h.Hour] = float64(h.Tokens)
		}
	}
	hourLabels := make([]string, 24)
	for i := range hourLabels {
		hourLabels[i] = fmt.Sprintf("%02d", i)
	}
	hourlyCard := components.ContentCard(
		"Tokens by Hour (UTC)",
		components.BarChart(hourly, hourLabels, t.Magenta, components.CardInnerWidth(halves[0]), chartH-2),
		halves[0],
	)

	costs := lo.Map(daily, func(d model.DailyStats, _ int) float64 { return d.Cost })
	costs = costs[max(0, len(costs)-components.CardInnerWidth(halves[1])):]
	peak := lo.MaxBy(daily, func(a, b model.DailyStats) bool { return a.Cost > b.Cost })
	total := lo.SumBy(daily, func(d model.DailyStats) float64 { return d.Cost })
	var costBody strings.Builder
	costBody.WriteString(components.Sparkline(costs, t.GreenBright))
	costBody.WriteString("\n\n")
	costBody.WriteString(fmt.Sprintf("Total    %s\n", cli.FormatCost(total)))
	costBody.WriteString(fmt.Sprintf("Per day  %s\n", cli.FormatCost(total/float64(len(daily)))))
	costBody.WriteString(fmt.Sprintf("Peak     %s on %s", cli.FormatCost(peak.Cost), peak.Date))
	costCard := components.ContentCard("Daily Cost", costBody.String(), halves[1])

	b.WriteString(components.CardRow([]string{hourlyCard, costCard}))
	return b.String()
}
