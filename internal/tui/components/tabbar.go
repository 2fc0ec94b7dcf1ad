package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/claudit/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune // shortcut, always the lowercased first letter of Name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o'},
	{Name: "Charts", Key: 'c'},
	{Name: "Pricing", Key: 'p'},
}

// TabVisualWidth returns the rendered width of a tab, padding included.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += 2 // brackets around the shortcut letter
	}
	return w
}

// RenderTabBar renders the tab bar on one line, tabs separated by one column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	sepStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		// " [O]verview "
		parts[i] = inactiveStyle.Render(" ") +
			dimStyle.Render("[") + keyStyle.Render(tab.Name[:1]) + dimStyle.Render("]") +
			inactiveStyle.Render(tab.Name[1:]+" ")
	}

	bar := strings.Join(parts, sepStyle.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
