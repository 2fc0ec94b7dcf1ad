package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/pipeline"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Cost breakdown by token type and model",
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(_ *cobra.Command, _ []string) error {
	data, err := loadEntries(true)
	if err != nil {
		return err
	}
	tokenCosts, modelCosts := pipeline.AggregateCostBreakdown(data.entries, data.costs)

	if flagJSON {
		return printJSON(struct {
			Totals  pipeline.TokenTypeCosts       `json:"totals"`
			ByModel []pipeline.ModelCostBreakdown `json:"by_model"`
		}{tokenCosts, modelCosts})
	}
	if len(data.entries) == 0 {
		fmt.Println("\n  No usage in the selected time range.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("COST BREAKDOWN  Last %dd", data.days)))
	fmt.Println()

	totalCost := tokenCosts.TotalCost
	byType := []struct {
		name string
		cost float64
	}{
		{"Output", tokenCosts.OutputCost},
		{"Input", tokenCosts.InputCost},
		{"Cache Write", tokenCosts.CacheWriteCost},
		{"Cache Read", tokenCosts.CacheReadCost},
	}

	typeRows := make([][]string, 0, len(byType)+2)
	for _, tc := range byType {
		pct := ""
		if totalCost > 0 {
			pct = cli.FormatPercent(tc.cost / totalCost * 100)
		}
		typeRows = append(typeRows, []string{tc.name, cli.FormatCost(tc.cost), pct})
	}
	typeRows = append(typeRows, cli.SeparatorRow, []string{"TOTAL", cli.FormatCost(totalCost), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Token Type",
		Headers: []string{"Type", "Cost", "Share"},
		Rows:    typeRows,
	}))

	modelRows := make([][]string, 0, len(modelCosts)+2)
	var savings float64
	for _, mc := range modelCosts {
		savings += mc.CacheSavings
		modelRows = append(modelRows, []string{
			shortModel(mc.Model),
			cli.FormatCost(mc.InputCost),
			cli.FormatCost(mc.OutputCost),
			cli.FormatCost(mc.CacheCost()),
			cli.FormatCost(mc.TotalCost),
		})
	}
	modelRows = append(modelRows, cli.SeparatorRow, []string{
		"TOTAL",
		cli.FormatCost(tokenCosts.InputCost),
		cli.FormatCost(tokenCosts.OutputCost),
		cli.FormatCost(tokenCosts.CacheCost()),
		cli.FormatCost(totalCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Model",
		Headers: []string{"Model", "Input", "Output", "Cache", "Total"},
		Rows:    modelRows,
	}))

	fmt.Printf("  Cache Savings: %s saved this period\n\n", cli.FormatCost(savings))
	return nil
}
