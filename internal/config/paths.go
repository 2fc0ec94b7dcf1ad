package config

import (
	"os"
	"path/filepath"
)

// Paths locates the Claude Code files claudit reads.
type Paths struct {
	ClaudeDir    string // ~/.claude
	ProjectsDir  string // ~/.claude/projects, root of the transcript tree
	RegistryPath string // ~/.claude.json, project registry
	SettingsPath string // ~/.claude/settings.json, where hooks are installed
}

// ResolvePaths derives Claude file locations. override replaces ~/.claude;
// the registry is then expected next to it, mirroring the default layout.
func ResolvePaths(override string) (Paths, error) {
	if override != "" {
		return pathsFor(override, filepath.Join(filepath.Dir(override), ".claude.json")), nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return Paths{}, ErrNoHomeDir
	}
	return pathsFor(filepath.Join(home, ".claude"), filepath.Join(home, ".claude.json")), nil
}

func pathsFor(claudeDir, registry string) Paths {
	return Paths{
		ClaudeDir:    claudeDir,
		ProjectsDir:  filepath.Join(claudeDir, "projects"),
		RegistryPath: registry,
		SettingsPath: filepath.Join(claudeDir, "settings.json"),
	}
}

// DataDir returns the directory for claudit's own state (hook journal).
func DataDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "claudit")
	}
	return filepath.Join(stateHome(), ".cache", "claudit")
}

// stateHome is the base for claudit's own files: the home directory, or the
// temp directory when there is none, never the working directory.
func stateHome() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return os.TempDir()
}

// JournalPath returns the full path to the hook journal database.
func JournalPath() string {
	return filepath.Join(DataDir(), "claudit.db")
}
