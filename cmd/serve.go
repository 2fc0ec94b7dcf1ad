package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/claudit/internal/cli"
	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/daemon"
	"github.com/theirongolddev/claudit/internal/store"
)

var (
	flagServePort         int
	flagServeInterval     time.Duration
	flagServeWatch        bool
	flagServeNoJournal    bool
	flagServeEventsBuffer int
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"daemon"},
	Short:   "Run the hook receiver and stats API",
	RunE:    runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "claudit.pid")
	defaultLog := filepath.Join(config.DataDir(), "claudit.log")

	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")

	serveCmd.Flags().IntVar(&flagServePort, "port", 0, "First port to try (default from config)")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", 0, "Stats polling interval (default from config)")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "Refresh stats when session logs change")
	serveCmd.Flags().BoolVar(&flagServeNoJournal, "no-journal", false, "Do not record hooks and snapshots")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	serveCmd.Flags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run daemon as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd, serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid daemon launch mode")
	}
	if flagServeDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground()
}

// serveConfig merges flags over the config file.
func serveConfig(cfg config.Config, paths config.Paths) daemon.Config {
	dc := daemon.Config{
		Port:                 cfg.Hooks.Port,
		Interval:             cfg.PollInterval(),
		EventsBuffer:         cfg.Daemon.EventsBuffer,
		NotificationsEnabled: cfg.Hooks.NotificationsEnabled,
		ExcerptChars:         cfg.Hooks.ExcerptChars,
		RatePerSec:           cfg.Hooks.RatePerSec,
		ChartDays:            windowDays(cfg),
	}
	if flagServePort > 0 {
		dc.Port = flagServePort
	}
	if flagServeInterval > 0 {
		dc.Interval = flagServeInterval
	}
	if flagServeEventsBuffer > 0 {
		dc.EventsBuffer = flagServeEventsBuffer
	}
	if flagServeWatch || cfg.Daemon.Watch {
		dc.WatchDir = paths.ProjectsDir
	}
	return dc
}

func startDaemonDetached() error {
	if pid, ok, err := newDaemonFiles(flagServePIDFile).live(); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	fmt.Println("  Check it with: claudit serve status")
	return nil
}

func runDaemonForeground() error {
	cfg := loadConfig()
	paths, err := resolvePaths(cfg)
	if err != nil {
		return err
	}

	files := newDaemonFiles(flagServePIDFile)
	pid := os.Getpid()
	if err := files.claim(pid); err != nil {
		return err
	}
	defer files.remove()

	var journal daemon.Journal
	if !flagServeNoJournal {
		j, err := store.Open(config.JournalPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Journal unavailable, continuing without it: %v\n", err)
		} else {
			defer func() { _ = j.Close() }()
			journal = j
		}
	}

	dc := serveConfig(cfg, paths)
	startedAt := time.Now()
	dc.OnListen = func(addr string) {
		_ = files.writeState(daemonRuntimeState{
			PID:       pid,
			Addr:      addr,
			StartedAt: startedAt,
			ClaudeDir: paths.ClaudeDir,
		})
		fmt.Printf("  claudit listening on http://%s\n", addr)
		fmt.Printf("  Polling every %s from %s\n", dc.Interval, paths.ProjectsDir)
		fmt.Printf("  Stop with: claudit serve stop --pid-file %s\n", flagServePIDFile)
	}

	svc := daemon.New(dc, newStatsCache(cfg, paths), journal)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	files := newDaemonFiles(flagServePIDFile)
	pid, ok, err := files.live()
	switch {
	case err != nil:
		return err
	case !ok && pid > 0:
		fmt.Printf("  Daemon: not running (removed stale pid file for %d)\n", pid)
		return nil
	case !ok:
		fmt.Println("  Daemon: not running")
		return nil
	}

	st, err := files.readState()
	if err != nil || st.Addr == "" {
		fmt.Printf("  Daemon PID: %d (not listening yet)\n", pid)
		return nil
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", st.Addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+st.Addr+"/v1/status", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var status daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}
	if flagJSON {
		return printJSON(status)
	}

	now := time.Now()
	fmt.Printf("  Up since: %s\n", status.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Last poll: %s (%d polls)\n", cli.FormatAge(status.LastPollAt, now), status.PollCount)
	fmt.Printf("  Hooks received: %d (last %s)\n", status.HooksReceived, cli.FormatAge(status.LastHookAt, now))
	fmt.Printf("  Watching logs: %v\n", status.Watching)
	fmt.Printf("  Tokens: %s  Cost: %s\n", cli.FormatTokens(status.Summary.TotalTokens), cli.FormatCost(status.Summary.TotalCost))
	fmt.Printf("  Today: %s  Burn: %s\n", cli.FormatTokens(status.Summary.TodayTokens), cli.FormatBurn(status.Summary.TokensPerMinute))
	if status.LastError != "" {
		fmt.Printf("  Last error: %s\n", status.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := newDaemonFiles(flagServePIDFile).stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
