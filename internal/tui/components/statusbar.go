package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/claudit/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. info is right-aligned;
// while refreshing it is replaced by a refresh marker.
func RenderStatusBar(width int, info string, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	busyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	left := style.Render(" [r]efresh  [?]help  [q]uit")
	right := style.Render(info + " ")
	if refreshing {
		right = busyStyle.Render("refreshing… ")
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + style.Render(strings.Repeat(" ", gap)) + right
}
