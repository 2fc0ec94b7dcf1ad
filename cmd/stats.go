package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Usage summary: today, current block, burn rate and totals",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	data, err := loadEntries(false)
	if err != nil {
		return err
	}
	stats := data.stats()

	if flagJSON {
		return printJSON(stats)
	}

	if stats.TotalMessagesCount == 0 {
		fmt.Println("\n  No Claude Code usage found.")
		fmt.Printf("  Looked in %s\n", data.paths.ProjectsDir)
		return nil
	}

	title := "CLAUDE CODE USAGE"
	if data.days > 0 {
		title += fmt.Sprintf("  Last %dd", data.days)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := [][]string{
		{"Today", cli.FormatTokens(stats.TodayTokens())},
		{"  Cost", cli.FormatCost(stats.TodayCost)},
		{"  Messages", cli.FormatNumber(stats.TodayMessagesCount)},
		{"  Blocks", cli.FormatNumber(int64(stats.TodaySessionCount))},
		{"---"},
		{"Current Block", cli.FormatTokens(stats.CurrentSessionTokens)},
		{"  Cost", cli.FormatCost(stats.CurrentSessionCost)},
		{"Burn Rate", cli.FormatBurn(stats.TokensPerMinute)},
		{"  Cost", cli.FormatCost(stats.CostPerHour) + "/h"},
		{"---"},
		{"Input Tokens", cli.FormatTokens(stats.TotalInputTokens)},
		{"Output Tokens", cli.FormatTokens(stats.TotalOutputTokens)},
		{"Cache Write", cli.FormatTokens(stats.TotalCacheCreationTokens)},
		{"Cache Read", cli.FormatTokens(stats.TotalCacheReadTokens)},
		{"Cache Hit Rate", cli.FormatPercent(stats.CacheHitRate())},
		{"---"},
		{"Total Tokens", cli.FormatTokens(stats.TotalTokens())},
		{"Cost (est)", cli.FormatCost(stats.TotalCost)},
		{"Messages", cli.FormatNumber(stats.TotalMessagesCount)},
		{"Blocks", cli.FormatNumber(int64(stats.TotalSessionCount))},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if data.read.FileErrors > 0 {
		msg := fmt.Sprintf("\n  %d files could not be read", data.read.FileErrors)
		if n := data.read.PartialFiles; n > 0 {
			msg += fmt.Sprintf(" (%d partially, records before the error kept)", n)
		}
		fmt.Fprintln(os.Stderr, cli.Warn(msg))
	}
	return nil
}
