package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"sessiondeck/internal/config"
)

// theme is huh's Charm theme with the dashboard's green accent.
func theme() *huh.Theme {
	green := lipgloss.Color("#4d9375")
	t := huh.ThemeCharm()
	t.FieldSeparator = lipgloss.NewStyle()
	t.Blurred.Title = t.Blurred.Title.Width(18).Foreground(lipgloss.Color("7"))
	t.Focused.Title = t.Focused.Title.Width(18).Foreground(green).Bold(true)
	t.Blurred.SelectedOption = t.Blurred.SelectedOption.Foreground(lipgloss.Color("243"))
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(green)
	t.Focused.Base.BorderForeground(green)
	return t
}

// Confirm asks a yes/no question. Aborting the form counts as no.
func Confirm(title, description string) (bool, error) {
	ok := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(theme()).WithWidth(60).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// Edit shows the editable settings prefilled from cur and returns the
// result. The caller decides whether to save it.
func Edit(cur config.Config) (config.Config, error) {
	c := cur
	if c.Refresh == "" {
		c.Refresh = config.DefaultRefresh.String()
	}
	scrollback := fmt.Sprint(c.Scrollback)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Settings").Description("Saved to config.toml; presets live in presets.toml"),
			huh.NewInput().Title("Assistant").Value(&c.Assistant).Validate(nonEmpty("assistant")),
			huh.NewInput().Title("Permission flag").Value(&c.PermissionFlag),
			huh.NewInput().Title("Editor").Value(&c.Editor).Validate(nonEmpty("editor")),
			huh.NewInput().Title("Shell").Value(&c.Shell).Validate(nonEmpty("shell")),
		),
		huh.NewGroup(
			huh.NewInput().Title("Refresh interval").Value(&c.Refresh).Validate(validateDuration),
			huh.NewInput().Title("Scrollback lines").Value(&scrollback).Validate(validatePositive),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&c.LogLevel),
		),
	).WithTheme(theme()).WithWidth(70)

	if err := form.Run(); err != nil {
		return cur, err
	}
	if _, err := fmt.Sscan(strings.TrimSpace(scrollback), &c.Scrollback); err != nil {
		return cur, err
	}
	return c, nil
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return errors.New("use a duration such as 1s or 500ms")
	}
	if d < 100*time.Millisecond {
		return errors.New("refresh must be at least 100ms")
	}
	return nil
}

func validatePositive(s string) error {
	var n int
	if _, err := fmt.Sscan(strings.TrimSpace(s), &n); err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}
