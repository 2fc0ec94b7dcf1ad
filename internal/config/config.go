// Package config holds claudit configuration, Claude directory resolution
// and the model pricing table.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrNoHomeDir is returned when the Claude data directory cannot be resolved
// because the host has no home directory and no override is configured.
var ErrNoHomeDir = errors.New("cannot resolve home directory for Claude data")

// Config holds all claudit configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Cache      CacheConfig      `toml:"cache"`
	Hooks      HooksConfig      `toml:"hooks"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	ClaudeDir       string `toml:"claude_dir,omitempty"`
	DefaultDays     int    `toml:"default_days"`
	StatsMaxAgeDays int    `toml:"stats_max_age_days"` // 0 = all-time
}

// CacheConfig controls the stats cache staleness window.
type CacheConfig struct {
	StaleAfterSec int `toml:"stale_after_sec"`
}

// HooksConfig controls the hook receiver.
type HooksConfig struct {
	Port                 int  `toml:"port"`
	NotificationsEnabled bool `toml:"notifications_enabled"`
	ExcerptChars         int  `toml:"excerpt_chars"`
	RatePerSec           int  `toml:"rate_per_sec"`
}

// DaemonConfig controls the background poller.
type DaemonConfig struct {
	PollIntervalSec int  `toml:"poll_interval_sec"`
	Watch           bool `toml:"watch"`
	EventsBuffer    int  `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// PricingOverrides allows user-defined pricing keyed by a model-name substring.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides. Unset fields fall
// back to the built-in schedule the model would otherwise get.
type ModelPricingOverride struct {
	InputPerMTok      *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok     *float64 `toml:"output_per_mtok,omitempty"`
	CacheReadPerMTok  *float64 `toml:"cache_read_per_mtok,omitempty"`
	CacheWritePerMTok *float64 `toml:"cache_write_per_mtok,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 30,
		},
		Cache: CacheConfig{
			StaleAfterSec: 30,
		},
		Hooks: HooksConfig{
			Port:                 3456,
			NotificationsEnabled: true,
			ExcerptChars:         120,
			RatePerSec:           20,
		},
		Daemon: DaemonConfig{
			PollIntervalSec: 30,
			EventsBuffer:    200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// StaleAfter returns the cache staleness threshold.
func (c Config) StaleAfter() time.Duration {
	if c.Cache.StaleAfterSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Cache.StaleAfterSec) * time.Second
}

// PollInterval returns the daemon polling interval.
func (c Config) PollInterval() time.Duration {
	if c.Daemon.PollIntervalSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Daemon.PollIntervalSec) * time.Second
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "claudit")
	}
	return filepath.Join(stateHome(), ".config", "claudit")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is user configured
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	//nolint:gosec // path is user configured
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
