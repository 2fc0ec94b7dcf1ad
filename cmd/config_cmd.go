package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(flagConfigPath)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cfg)
	}

	status := "loaded"
	if _, statErr := os.Stat(flagConfigPath); statErr != nil {
		status = "using defaults (no config file)"
	}

	statsWindow := "all time"
	if cfg.General.StatsMaxAgeDays > 0 {
		statsWindow = fmt.Sprintf("%d days", cfg.General.StatsMaxAgeDays)
	}
	general := [][2]string{
		{"Default days", strconv.Itoa(cfg.General.DefaultDays)},
		{"Stats window", statsWindow},
		{"Cache staleness", cfg.StaleAfter().String()},
	}
	if paths, err := resolvePaths(cfg); err != nil {
		general = append(general, [2]string{"Claude directory", "unresolved: " + err.Error()})
	} else {
		general = append(general,
			[2]string{"Claude directory", paths.ClaudeDir},
			[2]string{"Project registry", paths.RegistryPath},
		)
	}

	fmt.Println()
	fmt.Print(cli.RenderSection("Config", [][2]string{
		{"File", flagConfigPath},
		{"Status", status},
	}))
	fmt.Println()
	fmt.Print(cli.RenderSection("General", general))
	fmt.Println()
	fmt.Print(cli.RenderSection("Hooks", [][2]string{
		{"Port", strconv.Itoa(cfg.Hooks.Port)},
		{"Notifications", strconv.FormatBool(cfg.Hooks.NotificationsEnabled)},
		{"Excerpt length", strconv.Itoa(cfg.Hooks.ExcerptChars)},
		{"Rate limit", fmt.Sprintf("%d/s per client", cfg.Hooks.RatePerSec)},
	}))
	fmt.Println()
	fmt.Print(cli.RenderSection("Daemon", [][2]string{
		{"Poll interval", cfg.PollInterval().String()},
		{"Watch logs", strconv.FormatBool(cfg.Daemon.Watch)},
		{"Events buffer", strconv.Itoa(cfg.Daemon.EventsBuffer)},
		{"Journal", config.JournalPath()},
	}))
	fmt.Println()
	fmt.Print(cli.RenderSection("Appearance", [][2]string{
		{"Theme", cfg.Appearance.Theme},
	}))

	if len(cfg.Pricing.Overrides) > 0 {
		keys := lo.Keys(cfg.Pricing.Overrides)
		sort.Strings(keys)
		lines := lo.Map(keys, func(k string, _ int) [2]string {
			return [2]string{k, "custom rates"}
		})
		fmt.Println()
		fmt.Print(cli.RenderSection("Pricing overrides", lines))
	}

	fmt.Println()
	fmt.Println(cli.Muted("  Run `claudit setup` to reconfigure."))
	return nil
}
