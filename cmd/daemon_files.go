package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonRuntimeState is written next to the pid file once the daemon has
// bound its port, so other invocations can find it.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	ClaudeDir string    `json:"claude_dir"`
}

// daemonFiles is the pid file of a serve process and its state file.
type daemonFiles struct {
	pidPath   string
	statePath string
}

func newDaemonFiles(pidPath string) daemonFiles {
	return daemonFiles{pidPath: pidPath, statePath: pidPath + ".json"}
}

// live returns the pid of a running daemon. A pid file left by a dead
// process is removed along with its state and reported as not running.
func (f daemonFiles) live() (int, bool, error) {
	pid, err := f.readPID()
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if processAlive(pid) {
		return pid, true, nil
	}
	f.remove()
	return pid, false, nil
}

// claim records pid as the running daemon, failing if another is alive.
func (f daemonFiles) claim(pid int) error {
	if other, ok, err := f.live(); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("daemon already running (pid %d)", other)
	}
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	return os.WriteFile(f.pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func (f daemonFiles) remove() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.statePath)
}

func (f daemonFiles) readPID() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(f.pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.pidPath)
	}
	return pid, nil
}

func (f daemonFiles) writeState(st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.statePath, append(data, '\n'), 0o600)
}

func (f daemonFiles) readState() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(f.statePath)
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// stop sends SIGTERM and waits up to timeout for the process to exit.
func (f daemonFiles) stop(timeout time.Duration) (int, error) {
	pid, ok, err := f.live()
	if err != nil || !ok {
		return 0, errors.New("daemon is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon process: %w", err)
	}
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !processAlive(pid) {
			f.remove()
			return pid, nil
		}
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
