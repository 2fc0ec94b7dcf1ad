package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/source"
	"github.com/theirongolddev/claudit/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	files := 0
	claudeDir := ""
	if paths, err := resolvePaths(cfg); err == nil {
		claudeDir = paths.ClaudeDir
		files = len(source.Scan(paths.ProjectsDir, source.LoadRegistry(paths.RegistryPath)))
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(files, claudeDir, &vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	vals.Apply(&cfg)

	if err := config.SaveTo(flagConfigPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfigPath)
	fmt.Println("  Run `claudit hooks install` to enable notifications from Claude Code.")
	fmt.Println("  Run `claudit setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
