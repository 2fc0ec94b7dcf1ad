package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Show the model pricing table, overrides applied",
	RunE:  runPricing,
}

func init() {
	rootCmd.AddCommand(pricingCmd)
}

func runPricing(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	costs := config.NewCostModel(cfg.Pricing)
	table := costs.PricingTable()

	if flagJSON {
		return printJSON(table)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PRICING  USD per million tokens"))
	fmt.Println()

	rows := make([][]string, 0, len(table))
	for _, row := range table {
		s := row.Schedule
		rows = append(rows, []string{
			row.Label,
			cli.FormatRate(s.Input),
			cli.FormatRate(s.Output),
			cli.FormatRate(s.CacheWrite),
			cli.FormatRate(s.CacheRead),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Family", "Input", "Output", "Cache Write", "Cache Read"},
		Rows:    rows,
	}))

	if n := len(cfg.Pricing.Overrides); n > 0 {
		fmt.Printf("  %d override(s) from %s\n", n, flagConfigPath)
	}
	fmt.Println(cli.Muted("  Match order: " + strings.Join(costs.Rules(), ", ")))
	fmt.Println()
	return nil
}
