package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/tui/components"
)

func (a App) overviewMetrics() []components.Metric {
	s := a.stats
	return []components.Metric{
		{
			Label:  "Today",
			Value:  cli.FormatTokens(s.TodayTokens()),
			Detail: fmt.Sprintf("%s · %s msgs", cli.FormatCost(s.TodayCost), cli.FormatNumber(s.TodayMessagesCount)),
		},
		{
			Label:  "Current block",
			Value:  cli.FormatTokens(s.CurrentSessionTokens),
			Detail: cli.FormatCost(s.CurrentSessionCost),
		},
		{
			Label:  "Burn rate",
			Value:  cli.FormatBurn(s.TokensPerMinute),
			Detail: cli.FormatCost(s.CostPerHour) + "/h",
		},
		{
			Label:  "All time",
			Value:  cli.FormatTokens(s.TotalTokens()),
			Detail: fmt.Sprintf("%s · %d blocks", cli.FormatCost(s.TotalCost), s.TotalSessionCount),
		},
	}
}

func (a App) renderOverviewTab(cw int) string {
	var b strings.Builder

	b.WriteString(components.MetricCardRow(a.overviewMetrics(), cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderModelsCard(cw))
		b.WriteString("\n")
		b.WriteString(a.renderProjectsCard(cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.renderModelsCard(halves[0]),
		a.renderProjectsCard(halves[1]),
	}))
	return b.String()
}
