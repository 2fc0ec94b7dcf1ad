package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/model"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	data, err := loadEntries(true)
	if err != nil {
		return err
	}
	days := data.charts().Daily

	if flagJSON {
		return printJSON(days)
	}
	if len(days) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY USAGE  Last %dd (UTC)", data.days)))
	fmt.Println()

	// Newest first, as in a log.
	rows := make([][]string, 0, len(days)+2)
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		rows = append(rows, []string{
			d.Date,
			cli.FormatDayOfWeek(d.Date),
			cli.FormatNumber(d.Messages),
			cli.FormatTokens(d.InputTokens),
			cli.FormatTokens(d.OutputTokens),
			cli.FormatCost(d.Cost),
		})
	}
	totalCost := lo.SumBy(days, func(d model.DailyStats) float64 { return d.Cost })
	rows = append(rows, cli.SeparatorRow, []string{
		"TOTAL", "",
		cli.FormatNumber(lo.SumBy(days, func(d model.DailyStats) int64 { return d.Messages })),
		cli.FormatTokens(lo.SumBy(days, func(d model.DailyStats) int64 { return d.InputTokens })),
		cli.FormatTokens(lo.SumBy(days, func(d model.DailyStats) int64 { return d.OutputTokens })),
		cli.FormatCost(totalCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Msgs", "Input", "Output", "Cost"},
		Rows:    rows,
	}))

	costs := lo.Map(days, func(d model.DailyStats, _ int) float64 { return d.Cost })
	fmt.Printf("  Cost trend  %s\n\n", cli.RenderSparkline(costs))
	return nil
}
