package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Hooks.Port != 3456 {
		t.Fatalf("default port = %d, want 3456", cfg.Hooks.Port)
	}
	if cfg.StaleAfter() != 30*time.Second {
		t.Fatalf("default StaleAfter = %s", cfg.StaleAfter())
	}
}

func TestSaveTo_RoundTripAndPerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.General.ClaudeDir = "/tmp/claude"
	cfg.Daemon.Watch = true
	cfg.Pricing.Overrides = map[string]ModelPricingOverride{
		"sonnet": {InputPerMTok: ptr(2.5)},
	}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perms = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.ClaudeDir != "/tmp/claude" || !got.Daemon.Watch {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	o, ok := got.Pricing.Overrides["sonnet"]
	if !ok || o.InputPerMTok == nil || *o.InputPerMTok != 2.5 {
		t.Fatalf("override not preserved: %+v", got.Pricing.Overrides)
	}
	if o.OutputPerMTok != nil {
		t.Fatalf("unset override field decoded as %v", *o.OutputPerMTok)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[hooks]\nport = 4000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Hooks.Port != 4000 {
		t.Fatalf("port = %d, want 4000", cfg.Hooks.Port)
	}
	if cfg.Hooks.ExcerptChars != 120 || cfg.General.DefaultDays != 30 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadFrom_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[hooks\nport ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolvePaths_Override(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".claude")
	p, err := ResolvePaths(dir)
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}
	if p.ProjectsDir != filepath.Join(dir, "projects") {
		t.Errorf("ProjectsDir = %q", p.ProjectsDir)
	}
	if p.RegistryPath != filepath.Join(filepath.Dir(dir), ".claude.json") {
		t.Errorf("RegistryPath = %q", p.RegistryPath)
	}
	if p.SettingsPath != filepath.Join(dir, "settings.json") {
		t.Errorf("SettingsPath = %q", p.SettingsPath)
	}
}

func TestResolvePaths_NoHome(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")
	t.Setenv("home", "")

	_, err := ResolvePaths("")
	if !errors.Is(err, ErrNoHomeDir) {
		t.Fatalf("ResolvePaths without home = %v, want ErrNoHomeDir", err)
	}
}

func TestDir_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if got := Path(); got != filepath.Join(xdg, "claudit", "config.toml") {
		t.Fatalf("Path() = %q", got)
	}
}

func TestStatePaths_NoHomeUseTempDir(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")
	t.Setenv("home", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")

	for name, got := range map[string]string{"Dir": Dir(), "DataDir": DataDir(), "JournalPath": JournalPath()} {
		if !filepath.IsAbs(got) {
			t.Errorf("%s() = %q, want an absolute path", name, got)
		}
		if rel, err := filepath.Rel(os.TempDir(), got); err != nil || strings.HasPrefix(rel, "..") {
			t.Errorf("%s() = %q, want a path under %s", name, got, os.TempDir())
		}
	}
}
