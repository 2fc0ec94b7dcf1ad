// Package cmd implements the claudit CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/pipeline"
	"github.com/theirongolddev/claudit/internal/source"
)

var (
	flagDays       int
	flagDataDir    string
	flagQuiet      bool
	flagConfigPath string
	flagJSON       bool
)

var rootCmd = &cobra.Command{
	Use:          "claudit",
	Short:        "Claude Code usage analytics",
	Long:         "Aggregate token usage and estimated cost from your local Claude Code session logs.",
	RunE:         runStats,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days for charts (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Claude data directory (default ~/.claude)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", config.Path(), "Config file path")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadConfig reads the config file. A broken file is reported and the
// defaults are used so read-only commands still work.
func loadConfig() config.Config {
	cfg, err := config.LoadFrom(flagConfigPath)
	if err != nil && !flagQuiet {
		fmt.Fprintln(os.Stderr, cli.Warn(fmt.Sprintf("  Warning: %v (using defaults)", err)))
	}
	return cfg
}

// resolvePaths locates the Claude files, honoring --data-dir over the config.
func resolvePaths(cfg config.Config) (config.Paths, error) {
	dir := flagDataDir
	if dir == "" {
		dir = cfg.General.ClaudeDir
	}
	return config.ResolvePaths(dir)
}

// windowDays returns --days, falling back to the configured default.
func windowDays(cfg config.Config) int {
	if flagDays > 0 {
		return flagDays
	}
	if cfg.General.DefaultDays > 0 {
		return cfg.General.DefaultDays
	}
	return 30
}

func newStatsCache(cfg config.Config, paths config.Paths) *pipeline.StatsCache {
	return pipeline.NewStatsCache(pipeline.Options{
		Root:         paths.ProjectsDir,
		RegistryPath: paths.RegistryPath,
		Costs:        config.NewCostModel(cfg.Pricing),
		StaleAfter:   cfg.StaleAfter(),
		MaxAgeDays:   cfg.General.StatsMaxAgeDays,
	})
}

// loadedData is the result of one CLI read of the log corpus.
type loadedData struct {
	cfg     config.Config
	paths   config.Paths
	costs   config.CostModel
	entries []model.UsageRecord
	read    pipeline.ReadStats
	days    int // read window; 0 = all
	now     time.Time
}

// loadEntries is the shared data loading path used by the report commands.
// windowed limits the read to --days; otherwise the configured stats age
// limit applies.
func loadEntries(windowed bool) (*loadedData, error) {
	cfg := loadConfig()
	paths, err := resolvePaths(cfg)
	if err != nil {
		return nil, err
	}
	maxAgeDays := cfg.General.StatsMaxAgeDays
	if windowed {
		maxAgeDays = windowDays(cfg)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", paths.ProjectsDir)
	}
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%100 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 20))
		}
	}

	now := time.Now()
	entries, rs := pipeline.ReadEntries(paths.ProjectsDir, source.LoadRegistry(paths.RegistryPath), pipeline.ReadOptions{
		MaxAgeDays: maxAgeDays,
		Now:        now,
		Progress:   progressFn,
	})

	if !flagQuiet && rs.Files > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s files, %s records across %d projects    \n",
			cli.FormatNumber(int64(rs.ParsedFiles)),
			cli.FormatNumber(int64(rs.Records)),
			rs.Projects,
		)
	}

	return &loadedData{
		cfg:     cfg,
		paths:   paths,
		costs:   config.NewCostModel(cfg.Pricing),
		entries: entries,
		read:    rs,
		days:    maxAgeDays,
		now:     now,
	}, nil
}

func (d *loadedData) stats() model.AggregatedStats {
	return pipeline.Compute(d.entries, d.now, d.costs)
}

func (d *loadedData) charts() model.ChartData {
	return pipeline.BuildCharts(d.entries, d.costs)
}

func shortModel(name string) string {
	// "claude-opus-4-6" -> "opus-4-6"
	if len(name) > 7 && name[:7] == "claude-" {
		return name[7:]
	}
	return name
}
