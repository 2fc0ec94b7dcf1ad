package cmd

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/claudit/internal/config"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--port", "4000", "--detach=true", "-q"})
	want := "serve --port 4000 -q"
	if strings.Join(got, " ") != want {
		t.Errorf("filterDetachArg = %q, want %q", got, want)
	}
}

func TestServeConfig_FlagsOverrideConfig(t *testing.T) {
	t.Cleanup(func() {
		flagServePort, flagServeInterval, flagServeEventsBuffer, flagServeWatch = 0, 0, 0, false
	})

	cfg := config.DefaultConfig()
	paths := config.Paths{ProjectsDir: "/tmp/claude/projects"}

	dc := serveConfig(cfg, paths)
	if dc.Port != 3456 || dc.Interval != 30*time.Second || dc.EventsBuffer != 200 {
		t.Errorf("defaults: port=%d interval=%s buffer=%d", dc.Port, dc.Interval, dc.EventsBuffer)
	}
	if dc.WatchDir != "" {
		t.Errorf("WatchDir = %q with watching off", dc.WatchDir)
	}

	flagServePort = 4000
	flagServeInterval = 5 * time.Second
	flagServeEventsBuffer = 10
	flagServeWatch = true
	dc = serveConfig(cfg, paths)
	if dc.Port != 4000 || dc.Interval != 5*time.Second || dc.EventsBuffer != 10 {
		t.Errorf("flags: port=%d interval=%s buffer=%d", dc.Port, dc.Interval, dc.EventsBuffer)
	}
	if dc.WatchDir != paths.ProjectsDir {
		t.Errorf("WatchDir = %q, want %q", dc.WatchDir, paths.ProjectsDir)
	}
}

func TestDaemonFiles(t *testing.T) {
	files := newDaemonFiles(filepath.Join(t.TempDir(), "run", "claudit.pid"))

	if _, ok, err := files.live(); ok || err != nil {
		t.Fatalf("live without pid file = %v, %v", ok, err)
	}

	if err := files.claim(os.Getpid()); err != nil {
		t.Fatalf("claim: %v", err)
	}
	pid, ok, err := files.live()
	if err != nil || !ok || pid != os.Getpid() {
		t.Fatalf("live = %d, %v, %v", pid, ok, err)
	}
	if err := files.claim(os.Getpid()); err == nil {
		t.Error("second claim succeeded while the first daemon is alive")
	}

	st := daemonRuntimeState{PID: pid, Addr: "127.0.0.1:3457", StartedAt: time.Unix(1760000000, 0).UTC()}
	if err := files.writeState(st); err != nil {
		t.Fatal(err)
	}
	got, err := files.readState()
	if err != nil {
		t.Fatal(err)
	}
	if got.Addr != st.Addr || !got.StartedAt.Equal(st.StartedAt) {
		t.Errorf("readState = %+v, want %+v", got, st)
	}

	files.remove()
	if _, err := os.Stat(files.statePath); !os.IsNotExist(err) {
		t.Errorf("state file still present: %v", err)
	}
}

func TestDaemonFiles_StalePIDCleared(t *testing.T) {
	files := newDaemonFiles(filepath.Join(t.TempDir(), "claudit.pid"))

	// A child that has exited and been reaped leaves a pid nobody holds.
	proc, err := os.StartProcess("/bin/true", []string{"true"}, &os.ProcAttr{})
	if err != nil {
		t.Skipf("cannot start helper process: %v", err)
	}
	if _, err := proc.Wait(); err != nil {
		t.Fatal(err)
	}
	dead := proc.Pid

	if err := os.WriteFile(files.pidPath, []byte(strconv.Itoa(dead)+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := files.writeState(daemonRuntimeState{PID: dead}); err != nil {
		t.Fatal(err)
	}

	pid, ok, err := files.live()
	if err != nil || ok || pid != dead {
		t.Fatalf("live = %d, %v, %v; want stale %d", pid, ok, err, dead)
	}
	for _, path := range []string{files.pidPath, files.statePath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s not removed", path)
		}
	}
	if _, err := files.stop(time.Second); err == nil {
		t.Error("stop succeeded with no daemon running")
	}
}

func TestDaemonFiles_InvalidPID(t *testing.T) {
	files := newDaemonFiles(filepath.Join(t.TempDir(), "claudit.pid"))
	if err := os.WriteFile(files.pidPath, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := files.live(); err == nil {
		t.Error("live accepted a non-numeric pid")
	}
}

func TestShortModel(t *testing.T) {
	for in, want := range map[string]string{
		"claude-opus-4-6": "opus-4-6",
		"claude-":         "claude-",
		"gpt-4":           "gpt-4",
	} {
		if got := shortModel(in); got != want {
			t.Errorf("shortModel(%q) = %q, want %q", in, got, want)
		}
	}
}
