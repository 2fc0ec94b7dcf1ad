package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/source"
)

var (
	flagLatestChars int
	flagLatestFiles int
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print an excerpt of Claude's most recent response",
	RunE:  runLatest,
}

func init() {
	latestCmd.Flags().IntVar(&flagLatestChars, "chars", 0, "Maximum excerpt length (default from config)")
	latestCmd.Flags().IntVar(&flagLatestFiles, "files", source.DefaultLatestFiles, "How many recent session files to search")
	rootCmd.AddCommand(latestCmd)
}

func runLatest(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	paths, err := resolvePaths(cfg)
	if err != nil {
		return err
	}

	chars := flagLatestChars
	if chars <= 0 {
		chars = cfg.Hooks.ExcerptChars
	}

	files := source.Scan(paths.ProjectsDir, source.LoadRegistry(paths.RegistryPath))
	text, ok := source.LatestResponse(files, flagLatestFiles, chars)

	if flagJSON {
		return printJSON(struct {
			Found bool   `json:"found"`
			Text  string `json:"text"`
		}{ok, text})
	}
	if !ok {
		fmt.Println("\n  No assistant response found.")
		return nil
	}
	fmt.Println(text)
	return nil
}
