package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/hooks"
	"github.com/theirongolddev/claudit/internal/store"
)

var (
	flagHooksPort  int
	flagHooksLimit int
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage the Claude Code hooks that notify claudit",
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Add claudit hooks to Claude's settings.json",
	RunE:  runHooksInstall,
}

var hooksUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove claudit hooks from Claude's settings.json",
	RunE:  runHooksUninstall,
}

var hooksStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the hooks are installed",
	RunE:  runHooksStatus,
}

var hooksEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List hook events recorded by the daemon",
	RunE:  runHooksEvents,
}

func init() {
	hooksInstallCmd.Flags().IntVar(&flagHooksPort, "port", 0, "Receiver port the hooks post to (default from config)")
	hooksEventsCmd.Flags().IntVar(&flagHooksLimit, "limit", 20, "Maximum events to show")

	hooksCmd.AddCommand(hooksInstallCmd, hooksUninstallCmd, hooksStatusCmd, hooksEventsCmd)
	rootCmd.AddCommand(hooksCmd)
}

func newInstaller() (hooks.Installer, error) {
	cfg := loadConfig()
	paths, err := resolvePaths(cfg)
	if err != nil {
		return hooks.Installer{}, err
	}
	port := flagHooksPort
	if port <= 0 {
		port = cfg.Hooks.Port
	}
	return hooks.Installer{SettingsPath: paths.SettingsPath, Port: port}, nil
}

func runHooksInstall(_ *cobra.Command, _ []string) error {
	in, err := newInstaller()
	if err != nil {
		return err
	}
	if err := in.Install(); err != nil {
		return fmt.Errorf("installing hooks: %w", err)
	}
	fmt.Printf("  Installed hooks in %s (port %d)\n", in.SettingsPath, in.Port)
	fmt.Println("  Run `claudit serve` to receive them.")
	return nil
}

func runHooksUninstall(_ *cobra.Command, _ []string) error {
	in, err := newInstaller()
	if err != nil {
		return err
	}
	if err := in.Uninstall(); err != nil {
		return fmt.Errorf("removing hooks: %w", err)
	}
	fmt.Printf("  Removed claudit hooks from %s\n", in.SettingsPath)
	return nil
}

func runHooksStatus(_ *cobra.Command, _ []string) error {
	in, err := newInstaller()
	if err != nil {
		return err
	}
	st, err := in.Status()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(st)
	}

	state := "not installed"
	switch {
	case st.Installed:
		state = "installed"
	case len(st.Events) > 0:
		state = "partially installed"
	}

	fmt.Printf("  Settings: %s\n", in.SettingsPath)
	if !st.SettingsExists {
		fmt.Println("  Status:   settings file not found")
		return nil
	}
	fmt.Printf("  Status:   %s\n", state)
	for _, e := range hooks.Events {
		mark := cli.Muted("-")
		for _, have := range st.Events {
			if have == e.Name {
				mark = "✓"
			}
		}
		fmt.Printf("    %s %s\n", mark, e.Name)
	}
	if st.HasHooks && !st.Installed {
		fmt.Println("  Other hooks are configured and will be kept.")
	}
	return nil
}

func runHooksEvents(_ *cobra.Command, _ []string) error {
	j, err := store.Open(config.JournalPath())
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	events, err := j.RecentHooks(flagHooksLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(events)
	}
	if len(events) == 0 {
		fmt.Println("\n  No hook events recorded yet.")
		return nil
	}

	total, _ := j.HookCount()
	now := time.Now()
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		detail := e.Tool
		if e.Excerpt != "" {
			detail = e.Excerpt
		}
		rows = append(rows, []string{
			e.ReceivedAt.Local().Format("Jan 02 15:04:05"),
			cli.FormatAge(e.ReceivedAt, now),
			e.Event,
			cli.Truncate(detail, 60),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HOOK EVENTS  %d of %d", len(events), total)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Received", "Age", "Event", "Detail"},
		Rows:    rows,
	}))
	return nil
}
