package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/claudit/internal/tui/theme"
)

// ShareColor returns the bar color for a share of the total: larger shares
// are drawn warmer.
func ShareColor(share float64) lipgloss.Color {
	t := theme.Active
	switch {
	case share >= 0.5:
		return t.Orange
	case share >= 0.25:
		return t.Yellow
	case share >= 0.1:
		return t.Green
	default:
		return t.Blue
	}
}

// ShareBar renders a fixed-width bar for a 0-1 share followed by its percentage.
func ShareBar(share float64, width int) string {
	t := theme.Active
	share = max(0, min(share, 1))

	bar := progress.New(
		progress.WithSolidFill(string(ShareColor(share))),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(ShareColor(share)).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(share) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%5.1f%%", share*100))
}
