package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/store"
)

var (
	flagHistoryLimit int
	flagHistoryPrune bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Stats snapshots recorded by the daemon",
	Long: "List the stats snapshots `claudit serve` journals whenever totals change.\n" +
		"The window is --days; --prune deletes journal rows older than it.",
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "Maximum snapshots to show")
	historyCmd.Flags().BoolVar(&flagHistoryPrune, "prune", false, "Delete snapshots and hook events older than the window")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	days := windowDays(cfg)
	since := time.Now().AddDate(0, 0, -days)

	j, err := store.Open(config.JournalPath())
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	if flagHistoryPrune {
		n, err := j.Prune(since)
		if err != nil {
			return fmt.Errorf("pruning journal: %w", err)
		}
		fmt.Printf("  Pruned %d rows older than %dd\n", n, days)
		return nil
	}

	snaps, err := j.Snapshots(since, flagHistoryLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(snaps)
	}
	if len(snaps) == 0 {
		fmt.Println("\n  No snapshots recorded. Run `claudit serve` to start collecting.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SNAPSHOTS  Last %dd", days)))
	fmt.Println()

	rows := make([][]string, 0, len(snaps))
	for i, s := range snaps {
		delta := ""
		if i > 0 {
			delta = cli.FormatDelta(s.TotalCost, snaps[i-1].TotalCost)
		}
		rows = append(rows, []string{
			s.TakenAt.Local().Format("Jan 02 15:04"),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatCost(s.TotalCost),
			delta,
			cli.FormatTokens(s.TodayTokens),
			cli.FormatBurn(s.TokensPerMinute),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Taken", "Tokens", "Cost", "Δ Cost", "Today", "Burn"},
		Rows:    rows,
	}))
	return nil
}
