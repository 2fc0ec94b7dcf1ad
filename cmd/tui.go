package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/tui"
	"github.com/theirongolddev/claudit/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	if !theme.SetActive(cfg.Appearance.Theme) {
		fmt.Fprintf(os.Stderr, "  Unknown theme %q, using %s\n", cfg.Appearance.Theme, theme.Active.Name)
	}

	paths, err := resolvePaths(cfg)
	if err != nil {
		return err
	}

	// Force TrueColor profile so all background styling produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	_, statErr := os.Stat(flagConfigPath)
	app := tui.NewApp(newStatsCache(cfg, paths), tui.Options{
		Days:       windowDays(cfg),
		PollEvery:  cfg.StaleAfter(),
		ClaudeDir:  paths.ClaudeDir,
		ConfigPath: flagConfigPath,
		FirstRun:   os.IsNotExist(statErr),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
