// Package theme defines color themes for the claudit dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name string

	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // help and setup overlays
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Green        lipgloss.Color
	GreenBright  lipgloss.Color
	Orange       lipgloss.Color
	Blue         lipgloss.Color
	BlueBright   lipgloss.Color
	Yellow       lipgloss.Color
	Magenta      lipgloss.Color
	Cyan         lipgloss.Color
}

// chrome lists background, surface, surface hover, border, border accent,
// then dim, muted and primary text.
type chrome [8]string

// hues lists accent, bright accent, green, bright green, orange, blue,
// bright blue, yellow, magenta and cyan.
type hues [10]string

func newTheme(name string, c chrome, h hues) Theme {
	return Theme{
		Name:         name,
		Background:   lipgloss.Color(c[0]),
		Surface:      lipgloss.Color(c[1]),
		SurfaceHover: lipgloss.Color(c[2]),
		Border:       lipgloss.Color(c[3]),
		BorderAccent: lipgloss.Color(c[4]),
		TextDim:      lipgloss.Color(c[5]),
		TextMuted:    lipgloss.Color(c[6]),
		TextPrimary:  lipgloss.Color(c[7]),
		Accent:       lipgloss.Color(h[0]),
		AccentBright: lipgloss.Color(h[1]),
		Green:        lipgloss.Color(h[2]),
		GreenBright:  lipgloss.Color(h[3]),
		Orange:       lipgloss.Color(h[4]),
		Blue:         lipgloss.Color(h[5]),
		BlueBright:   lipgloss.Color(h[6]),
		Yellow:       lipgloss.Color(h[7]),
		Magenta:      lipgloss.Color(h[8]),
		Cyan:         lipgloss.Color(h[9]),
	}
}

// FlexokiDark is the default: warm, paper-like dark tones.
var FlexokiDark = newTheme("flexoki-dark",
	chrome{"#100F0F", "#1C1B1A", "#282726", "#403E3C", "#3AA99F", "#575653", "#878580", "#FFFCF0"},
	hues{"#3AA99F", "#5BC8BE", "#879A39", "#A3B859", "#DA702C", "#4385BE", "#6BA3D6", "#D0A215", "#CE5D97", "#24837B"},
)

// CatppuccinMocha uses the Catppuccin Mocha pastels.
var CatppuccinMocha = newTheme("catppuccin-mocha",
	chrome{"#1E1E2E", "#313244", "#45475A", "#585B70", "#89B4FA", "#6C7086", "#A6ADC8", "#CDD6F4"},
	hues{"#89B4FA", "#B4D0FB", "#A6E3A1", "#C6F6C1", "#FAB387", "#89B4FA", "#B4D0FB", "#F9E2AF", "#F5C2E7", "#94E2D5"},
)

// TokyoNight is a cool blue and purple palette.
var TokyoNight = newTheme("tokyo-night",
	chrome{"#1A1B26", "#24283B", "#343A52", "#565F89", "#7AA2F7", "#565F89", "#A9B1D6", "#C0CAF5"},
	hues{"#7AA2F7", "#A9C1FF", "#9ECE6A", "#B9E87A", "#FF9E64", "#7AA2F7", "#A9C1FF", "#E0AF68", "#BB9AF7", "#7DCFFF"},
)

// Terminal sticks to the 16 ANSI colors.
var Terminal = newTheme("terminal",
	chrome{"0", "0", "8", "8", "6", "8", "7", "15"},
	hues{"6", "14", "2", "10", "3", "4", "12", "3", "5", "6"},
)

// All available themes, default first.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Active is the currently selected theme.
var Active = FlexokiDark

// Names lists the theme names in display order.
func Names() []string {
	return lo.Map(All, func(t Theme, _ int) string { return t.Name })
}

// ByName returns the theme with the given name, reporting whether it exists.
func ByName(name string) (Theme, bool) {
	return lo.Find(All, func(t Theme) bool { return t.Name == name })
}

// SetActive sets the active theme by name and reports whether name was known.
func SetActive(name string) bool {
	t, ok := ByName(name)
	if !ok {
		t = FlexokiDark
	}
	Active = t
	return ok
}
