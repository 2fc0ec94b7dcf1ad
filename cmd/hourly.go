package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/model"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Activity by hour of day",
	RunE:  runHourly,
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(_ *cobra.Command, _ []string) error {
	data, err := loadEntries(true)
	if err != nil {
		return err
	}
	hours := data.charts().Hourly

	if flagJSON {
		return printJSON(hours)
	}
	if len(hours) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ACTIVITY BY HOUR  Last %dd (UTC)", data.days)))
	fmt.Println()

	byHour := lo.KeyBy(hours, func(h model.HourlyStats) int { return h.Hour })
	peak := lo.MaxBy(hours, func(a, b model.HourlyStats) bool { return a.Tokens > b.Tokens })

	for hour := range 24 {
		h := byHour[hour]
		fmt.Printf("  %02d:00 │ %6s msgs │ %s\n",
			hour,
			cli.FormatNumber(h.Messages),
			cli.RenderHorizontalBar(cli.FormatTokens(h.Tokens), float64(h.Tokens), float64(peak.Tokens), 40))
	}

	fmt.Printf("\n  Peak: %02d:00 (%s tokens)\n\n", peak.Hour, cli.FormatTokens(peak.Tokens))
	return nil
}
