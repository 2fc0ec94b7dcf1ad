// Package hooks installs and removes the Claude Code hooks that notify the
// claudit daemon.
package hooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrSettingsMalformed is returned when settings.json exists but is not a
// JSON object. The file is left untouched.
var ErrSettingsMalformed = errors.New("claude settings.json is malformed")

// marker identifies commands written by claudit.
const marker = "/hook -H"

// Events lists the hook events claudit installs, with their matchers.
var Events = []struct {
	Name    string
	Matcher string
}{
	{"Stop", "*"},
	{"SubagentStop", "*"},
	{"PostToolUse", "Bash"},
}

// Installer edits a Claude settings.json file.
type Installer struct {
	SettingsPath string
	Port         int
}

// Status describes what the settings file currently contains.
type Status struct {
	SettingsExists bool     `json:"settings_exists"`
	HasHooks       bool     `json:"has_hooks"` // any "hooks" key, ours or not
	Installed      bool     `json:"installed"` // every claudit event present
	Events         []string `json:"events"`    // events with a claudit command
}

// Command returns the shell command a hook for event runs.
func Command(port int, event string) string {
	body := fmt.Sprintf(`{"event": "%s"}`, event)
	if event == "PostToolUse" {
		body = `{"event": "PostToolUse", "tool": "'"$CLAUDE_TOOL_NAME"'"}`
	}
	return fmt.Sprintf(
		`curl -s -X POST http://localhost:%d/hook -H "Content-Type: application/json" -d '%s' > /dev/null 2>&1 &`,
		port, body,
	)
}

// Install adds claudit's hooks, replacing any earlier claudit entries and
// keeping hooks from other tools. An existing file is first copied to
// settings.json.backup.
func (in Installer) Install() error {
	settings, exists, err := in.load()
	if err != nil {
		return err
	}

	if exists {
		if err := copyFile(in.SettingsPath, in.SettingsPath+".backup"); err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}
	}

	hooks := hooksOf(settings)
	for _, ev := range Events {
		groups := withoutClaudit(hooks[ev.Name])
		groups = append(groups, map[string]any{
			"matcher": ev.Matcher,
			"hooks": []any{
				map[string]any{"type": "command", "command": Command(in.Port, ev.Name)},
			},
		})
		hooks[ev.Name] = groups
	}
	settings["hooks"] = hooks

	return in.save(settings)
}

// Uninstall removes claudit's hooks. The "hooks" key is dropped when nothing
// else remains in it. A missing settings file is not an error.
func (in Installer) Uninstall() error {
	settings, exists, err := in.load()
	if err != nil || !exists {
		return err
	}
	if _, ok := settings["hooks"]; !ok {
		return nil
	}

	hooks := hooksOf(settings)
	for name, v := range hooks {
		groups, ok := v.([]any)
		if !ok {
			continue
		}
		kept := withoutClaudit(groups)
		if len(kept) == 0 {
			delete(hooks, name)
		} else {
			hooks[name] = kept
		}
	}

	if len(hooks) == 0 {
		delete(settings, "hooks")
	} else {
		settings["hooks"] = hooks
	}
	return in.save(settings)
}

// Status reports the hooks found in the settings file.
func (in Installer) Status() (Status, error) {
	settings, exists, err := in.load()
	if err != nil || !exists {
		return Status{}, err
	}

	st := Status{SettingsExists: true}
	raw, ok := settings["hooks"]
	if !ok {
		return st, nil
	}
	st.HasHooks = true

	hooks, _ := raw.(map[string]any)
	for name, v := range hooks {
		groups, _ := v.([]any)
		if len(groups) != len(withoutClaudit(groups)) {
			st.Events = append(st.Events, name)
		}
	}
	sort.Strings(st.Events)
	st.Installed = len(st.Events) >= len(Events)
	return st, nil
}

// IsInstalled reports whether the settings file has a "hooks" key.
func (in Installer) IsInstalled() bool {
	st, err := in.Status()
	return err == nil && st.HasHooks
}

func (in Installer) load() (map[string]any, bool, error) {
	data, err := os.ReadFile(in.SettingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, false, nil
		}
		return nil, false, fmt.Errorf("reading settings: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, true, nil
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil || settings == nil {
		return nil, true, fmt.Errorf("%w: %s", ErrSettingsMalformed, in.SettingsPath)
	}
	return settings, true, nil
}

func (in Installer) save(settings map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(in.SettingsPath), 0o750); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(in.SettingsPath); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(in.SettingsPath, append(data, '\n'), perm); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// hooksOf returns the settings' hooks object, creating it when absent or
// not an object.
func hooksOf(settings map[string]any) map[string]any {
	if h, ok := settings["hooks"].(map[string]any); ok {
		return h
	}
	return map[string]any{}
}

// withoutClaudit drops matcher groups whose commands were written by claudit.
func withoutClaudit(v any) []any {
	groups, _ := v.([]any)
	kept := make([]any, 0, len(groups))
	for _, g := range groups {
		if !isClauditGroup(g) {
			kept = append(kept, g)
		}
	}
	return kept
}

func isClauditGroup(g any) bool {
	group, ok := g.(map[string]any)
	if !ok {
		return false
	}
	entries, _ := group["hooks"].([]any)
	for _, e := range entries {
		entry, _ := e.(map[string]any)
		cmd, _ := entry["command"].(string)
		if strings.Contains(cmd, "http://localhost:") && strings.Contains(cmd, marker) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) //nolint:gosec // settings path is derived from the Claude dir
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
