// Package tui provides the interactive Bubble Tea dashboard for claudit.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/pipeline"
	"github.com/theirongolddev/claudit/internal/tui/components"
	"github.com/theirongolddev/claudit/internal/tui/theme"
)

// StatsProvider supplies the dashboard with aggregated stats.
// *pipeline.StatsCache satisfies it.
type StatsProvider interface {
	Get() model.AggregatedStats
	Refresh() model.AggregatedStats
	Charts(days int) model.ChartData
	Costs() config.CostModel
	ComputedAt() time.Time
	LastReadStats() pipeline.ReadStats
}

// Options configures the dashboard.
type Options struct {
	Days       int           // chart window
	PollEvery  time.Duration // how often cached stats are re-read
	ClaudeDir  string        // shown by the setup wizard
	ConfigPath string        // where setup answers are saved
	FirstRun   bool          // show the setup wizard after the first load
}

// statsMsg carries the result of a stats load.
type statsMsg struct {
	stats      model.AggregatedStats
	charts     model.ChartData
	read       pipeline.ReadStats
	computedAt time.Time
	took       time.Duration
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	src  StatsProvider
	opts Options

	// Data
	stats      model.AggregatedStats
	charts     model.ChartData
	read       pipeline.ReadStats
	computedAt time.Time
	took       time.Duration
	loaded     bool
	refreshing bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	setupErr  error

	now func() time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(src StatsProvider, opts Options) App {
	if opts.Days <= 0 {
		opts.Days = 30
	}
	if opts.PollEvery <= 0 {
		opts.PollEvery = 30 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		src:        src,
		opts:       opts,
		spinner:    sp,
		refreshing: true,
		now:        time.Now,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		loadCmd(a.src, a.opts.Days, false),
		tickCmd(a.opts.PollEvery),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.setupForm != nil {
		if _, ok := msg.(tea.WindowSizeMsg); !ok {
			return a.updateSetupForm(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case statsMsg:
		a.stats = msg.stats
		a.charts = msg.charts
		a.read = msg.read
		a.computedAt = msg.computedAt
		a.took = msg.took
		a.refreshing = false
		firstLoad := !a.loaded
		a.loaded = true

		if firstLoad && a.opts.FirstRun {
			cfg, _ := config.LoadFrom(a.opts.ConfigPath)
			a.setupVals = SetupValuesFrom(cfg)
			a.setupForm = NewSetupForm(a.read.Files, a.opts.ClaudeDir, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case tickMsg:
		if a.refreshing {
			return a, tickCmd(a.opts.PollEvery)
		}
		return a, tea.Batch(loadCmd(a.src, a.opts.Days, false), tickCmd(a.opts.PollEvery))

	case spinner.TickMsg:
		if a.loaded && !a.refreshing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(loadCmd(a.src, a.opts.Days, true), a.spinner.Tick)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
		return a, tea.Quit
	}

	m, cmd := a.setupForm.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, _ := config.LoadFrom(a.opts.ConfigPath)
		a.setupVals.Apply(&cfg)
		a.setupErr = config.SaveTo(a.opts.ConfigPath, cfg)
		theme.SetActive(cfg.Appearance.Theme)
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  claudit needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ claudit"))
	b.WriteString(subtitleStyle.Render(" · Claude Code usage"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Reading session logs..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"o c p", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"r", "Recompute from logs"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Stats re-read every %s", a.opts.PollEvery)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	filterStr := pillStyle.Render(" ") +
		pillAccent.Render(fmt.Sprintf("%dd", a.opts.Days)) +
		pillStyle.Render(" │ ") +
		pillAccent.Render(cli.FormatNumber(int64(a.read.Files))) +
		pillStyle.Render(" files ")
	if a.setupErr != nil {
		filterStr += lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("│ config not saved: " + a.setupErr.Error())
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filterStr)

	statusBar := components.RenderStatusBar(w, a.statusInfo(), a.refreshing)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderChartsTab(cw)
	case 2:
		content = a.renderPricingTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// statusInfo summarizes freshness for the status bar.
func (a App) statusInfo() string {
	return fmt.Sprintf("updated %s · %.1fs", cli.FormatAge(a.computedAt, a.now()), a.took.Seconds())
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd reads stats in the background. force bypasses the cache.
func loadCmd(src StatsProvider, days int, force bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		var stats model.AggregatedStats
		if force {
			stats = src.Refresh()
		} else {
			stats = src.Get()
		}
		return statsMsg{
			stats:      stats,
			charts:     src.Charts(days),
			read:       src.LastReadStats(),
			computedAt: src.ComputedAt(),
			took:       time.Since(start),
		}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// chartDateLabels builds compact X-axis labels for a chronological series of
// YYYY-MM-DD dates: month abbreviation at the start and at month boundaries,
// otherwise the day number.
func chartDateLabels(dates []string) []string {
	labels := make([]string, len(dates))
	prevMonth := time.Month(0)
	for i, s := range dates {
		dt, err := time.Parse("2006-01-02", s)
		if err != nil {
			labels[i] = s
			continue
		}
		switch {
		case i == 0 && len(dates) > 1, dt.Month() != prevMonth && i != len(dates)-1:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = fmt.Sprint(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func shortModel(name string) string {
	return strings.TrimPrefix(name, "claude-")
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
