package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/source"
	"github.com/theirongolddev/claudit/internal/tui/components"
	"github.com/theirongolddev/claudit/internal/tui/theme"
)

const maxBreakdownRows = 8

func (a App) renderModelsCard(cw int) string {
	t := theme.Active
	stats := a.stats

	innerW := components.CardInnerWidth(cw)
	fixedCols := 8 + 10 + 10 + 3 + 2 + 7 // Msgs, Tokens, Cost, gaps, share percentage
	nameW := min(max(innerW-fixedCols-10, 12), 28)
	shareW := min(max(innerW-fixedCols-nameW, 4), 30)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	modelColors := []lipgloss.Color{t.BlueBright, t.Cyan, t.Magenta, t.Yellow, t.Green}
	nameStyles := make([]lipgloss.Style, len(modelColors))
	for i, color := range modelColors {
		nameStyles[i] = lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %8s %10s %10s  %s",
		nameW, "Model", "Msgs", "Tokens", "Cost", "Share")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	names := stats.ModelsByCost()
	if len(names) == 0 {
		body.WriteString(mutedStyle.Render("No usage recorded yet"))
	}
	for i, name := range names {
		if i == maxBreakdownRows {
			body.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(names)-i)))
			break
		}
		ms := stats.ByModel[name]
		share := 0.0
		if stats.TotalCost > 0 {
			share = ms.Cost / stats.TotalCost
		}
		body.WriteString(nameStyles[i%len(modelColors)].Render(fmt.Sprintf("%-*s", nameW, cli.Truncate(shortModel(name), nameW))))
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %8s %10s",
			cli.FormatNumber(ms.MessageCount),
			cli.FormatTokens(ms.TotalTokens()))))
		body.WriteString(costStyle.Render(fmt.Sprintf(" %10s", cli.FormatCost(ms.Cost))))
		body.WriteString(spaceStyle.Render("  "))
		body.WriteString(components.ShareBar(share, shareW))
		body.WriteString("\n")
	}

	return components.ContentCard("Models", body.String(), cw)
}

func (a App) renderProjectsCard(cw int) string {
	t := theme.Active
	stats := a.stats

	innerW := components.CardInnerWidth(cw)
	fixedCols := 8 + 10 + 10 // Msgs, Tokens, Cost
	nameW := max(innerW-fixedCols-3, 18)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %8s %10s %10s", nameW, "Project", "Msgs", "Tokens", "Cost")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	names := stats.ProjectsByCost()
	if len(names) == 0 {
		body.WriteString(mutedStyle.Render("No projects found"))
	}
	for i, name := range names {
		if i == maxBreakdownRows {
			body.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(names)-i)))
			break
		}
		ps := stats.ByProject[name]
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, cli.Truncate(source.ShortProjectName(name), nameW))))
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %8s %10s",
			cli.FormatNumber(ps.MessageCount),
			cli.FormatTokens(ps.TotalTokens()))))
		body.WriteString(costStyle.Render(fmt.Sprintf(" %10s", cli.FormatCost(ps.Cost))))
		body.WriteString("\n")
	}

	return components.ContentCard("Projects", body.String(), cw)
}
