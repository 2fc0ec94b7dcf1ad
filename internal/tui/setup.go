package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/samber/lo"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/tui/theme"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Days          int
	Theme         string
	Port          string
	Notifications bool
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Days:          cfg.General.DefaultDays,
		Theme:         cfg.Appearance.Theme,
		Port:          strconv.Itoa(cfg.Hooks.Port),
		Notifications: cfg.Hooks.NotificationsEnabled,
	}
}

// Apply copies the answers into cfg. The port has already been validated.
func (v SetupValues) Apply(cfg *config.Config) {
	if v.Days > 0 {
		cfg.General.DefaultDays = v.Days
	}
	if _, ok := theme.ByName(v.Theme); ok {
		cfg.Appearance.Theme = v.Theme
	}
	if port, err := strconv.Atoi(v.Port); err == nil {
		cfg.Hooks.Port = port
	}
	cfg.Hooks.NotificationsEnabled = v.Notifications
}

func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

// NewSetupForm builds the setup wizard. files and claudeDir are shown in
// the welcome note.
func NewSetupForm(files int, claudeDir string, vals *SetupValues) *huh.Form {
	welcome := "Let's set up a few things."
	if files > 0 {
		welcome = fmt.Sprintf("Found %d session files in %s.\n\n%s", files, claudeDir, welcome)
	}

	themeOptions := lo.Map(theme.Names(), func(name string, _ int) huh.Option[string] {
		return huh.NewOption(name, name)
	})

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to claudit").
				Description(welcome),
			huh.NewSelect[int]().
				Title("Default time range").
				Options(
					huh.NewOption("7 days", 7),
					huh.NewOption("30 days", 30),
					huh.NewOption("90 days", 90),
				).
				Value(&vals.Days),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions...).
				Value(&vals.Theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Hook receiver port").
				Description("Claude Code hooks post events to 127.0.0.1 on this port.").
				Value(&vals.Port).
				Validate(validatePort),
			huh.NewConfirm().
				Title("Notify when Claude finishes responding?").
				Value(&vals.Notifications),
		),
	).WithShowHelp(true)
}
