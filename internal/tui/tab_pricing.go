package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/tui/components"
	"github.com/theirongolddev/claudit/internal/tui/theme"
)

func (a App) renderPricingTab(cw int) string {
	t := theme.Active
	stats := a.stats
	costs := a.src.Costs()
	var b strings.Builder

	perDay := 0.0
	if n := len(a.charts.Daily); n > 0 {
		for _, d := range a.charts.Daily {
			perDay += d.Cost
		}
		perDay /= float64(n)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Cost", Value: cli.FormatCost(stats.TotalCost), Detail: cli.FormatNumber(stats.TotalMessagesCount) + " msgs"},
		{Label: "Per Active Day", Value: cli.FormatCost(perDay), Detail: fmt.Sprintf("last %dd", a.opts.Days)},
		{Label: "Projected", Value: cli.FormatCost(perDay*30) + "/mo"},
		{Label: "Cache Hits", Value: cli.FormatPercent(stats.CacheHitRate()), Detail: cli.FormatTokens(stats.TotalCacheReadTokens) + " read"},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.BlueBright).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	// Cost split per model.
	nameW := max(innerW-4*11, 14)
	var split strings.Builder
	split.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %10s %10s %10s %10s", nameW, "Model", "Input", "Output", "Cache", "Total")))
	split.WriteString("\n")
	split.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	split.WriteString("\n")
	for _, name := range stats.ModelsByCost() {
		ms := stats.ByModel[name]
		sched := costs.ScheduleFor(name)
		input := float64(ms.InputTokens) * sched.Input / 1e6
		output := float64(ms.OutputTokens) * sched.Output / 1e6
		cache := (float64(ms.CacheCreationTokens)*sched.CacheWrite + float64(ms.CacheReadTokens)*sched.CacheRead) / 1e6
		split.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, cli.Truncate(shortModel(name), nameW))))
		split.WriteString(valueStyle.Render(fmt.Sprintf(" %10s %10s %10s",
			cli.FormatCost(input), cli.FormatCost(output), cli.FormatCost(cache))))
		split.WriteString(costStyle.Render(fmt.Sprintf(" %10s", cli.FormatCost(ms.Cost))))
		split.WriteString("\n")
	}
	b.WriteString(components.ContentCard("Cost by Model", split.String(), cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	tableW := components.CardInnerWidth(halves[0])
	familyW := max(tableW-4*9, 10)
	var rates strings.Builder
	rates.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %8s %8s %8s %8s", familyW, "Family", "In", "Out", "C.Read", "C.Write")))
	rates.WriteString("\n")
	for _, row := range costs.PricingTable() {
		s := row.Schedule
		rates.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", familyW, cli.Truncate(row.Label, familyW))))
		rates.WriteString(valueStyle.Render(fmt.Sprintf(" %8s %8s %8s %8s",
			cli.FormatRate(s.Input), cli.FormatRate(s.Output), cli.FormatRate(s.CacheRead), cli.FormatRate(s.CacheWrite))))
		rates.WriteString("\n")
	}
	rates.WriteString(mutedStyle.Render("USD per million tokens"))
	ratesCard := components.ContentCard("Pricing", rates.String(), halves[0])

	var spend strings.Builder
	if len(a.charts.Daily) == 0 {
		spend.WriteString(mutedStyle.Render("No data"))
	}
	for _, d := range topSpendDays(a.charts.Daily, 5) {
		spend.WriteString(valueStyle.Render(d.Date))
		spend.WriteString(spaceStyle.Render("  "))
		spend.WriteString(mutedStyle.Render(cli.FormatDayOfWeek(d.Date)))
		spend.WriteString(spaceStyle.Render("  "))
		spend.WriteString(costStyle.Render(cli.FormatCost(d.Cost)))
		spend.WriteString("\n")
	}
	spendCard := components.ContentCard("Top Spend Days", spend.String(), halves[1])

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Pricing", rates.String(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Top Spend Days", spend.String(), cw))
	} else {
		b.WriteString(components.CardRow([]string{ratesCard, spendCard}))
	}
	return b.String()
}

// topSpendDays returns the n most expensive days, newest first.
func topSpendDays(days []model.DailyStats, n int) []model.DailyStats {
	sorted := make([]model.DailyStats, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cost > sorted[j].Cost
	})
	top := sorted[:min(n, len(sorted))]
	sort.Slice(top, func(i, j int) bool {
		return top[i].Date > top[j].Date
	})
	return top
}
