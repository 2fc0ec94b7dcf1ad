package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/source"
)

var flagProjectsFull bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project usage ranking",
	RunE:  runProjects,
}

func init() {
	projectsCmd.Flags().BoolVar(&flagProjectsFull, "full", false, "Show full project paths")
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	data, err := loadEntries(false)
	if err != nil {
		return err
	}
	stats := data.stats()

	if flagJSON {
		return printJSON(stats.ByProject)
	}
	if len(stats.ByProject) == 0 {
		fmt.Println("\n  No project data found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTS"))
	fmt.Println()

	rows := make([][]string, 0, len(stats.ByProject))
	for _, id := range stats.ProjectsByCost() {
		ps := stats.ByProject[id]
		name := source.ShortProjectName(id)
		if flagProjectsFull {
			name = id
		}
		rows = append(rows, []string{
			cli.Truncate(name, 40),
			cli.FormatNumber(ps.MessageCount),
			cli.FormatTokens(ps.InputTokens),
			cli.FormatTokens(ps.OutputTokens),
			cli.FormatCost(ps.Cost),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Msgs", "Input", "Output", "Cost"},
		Rows:    rows,
	}))
	return nil
}
