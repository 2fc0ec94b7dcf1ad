package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model usage breakdown",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	data, err := loadEntries(false)
	if err != nil {
		return err
	}
	stats := data.stats()

	if flagJSON {
		return printJSON(stats.ByModel)
	}
	if len(stats.ByModel) == 0 {
		fmt.Println("\n  No model data found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL USAGE"))
	fmt.Println()

	rows := make([][]string, 0, len(stats.ByModel))
	for _, name := range stats.ModelsByCost() {
		ms := stats.ByModel[name]
		share := 0.0
		if stats.TotalCost > 0 {
			share = ms.Cost / stats.TotalCost * 100
		}
		rows = append(rows, []string{
			shortModel(name),
			cli.FormatNumber(ms.MessageCount),
			cli.FormatTokens(ms.InputTokens),
			cli.FormatTokens(ms.OutputTokens),
			cli.FormatTokens(ms.CacheReadTokens),
			cli.FormatCost(ms.Cost),
			cli.FormatPercent(share),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Msgs", "Input", "Output", "Cache Read", "Cost", "Share"},
		Rows:    rows,
	}))
	return nil
}
