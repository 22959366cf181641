package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/config"
	"sessiondeck/internal/headless"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/system"
	"sessiondeck/internal/ui"
)

// loadConfig reads config.toml and applies its log level unless --debug
// is set. A broken file yields defaults and a warning.
func loadConfig() (config.Config, []string) {
	var warnings []string
	c, err := config.Load()
	if err != nil {
		system.Logger.Warn("config unreadable; using defaults", "err", err)
		warnings = append(warnings, "config: "+err.Error())
	}
	if !debug {
		system.SetLevel(c.LogLevel)
	}
	return c, warnings
}

// loadRegistry always returns a usable registry; load problems become
// warnings.
func loadRegistry() (*registry.Registry, []string) {
	reg, err := registry.Load(config.RegistryPath())
	if err != nil {
		system.Logger.Warn("registry degraded", "path", config.RegistryPath(), "err", err)
		return reg, []string{"registry: " + err.Error()}
	}
	return reg, nil
}

// openRegistry is loadRegistry for one-shot commands: warnings go to
// stderr instead of the dashboard status line.
func openRegistry(cmd *cobra.Command) *registry.Registry {
	reg, warnings := loadRegistry()
	if w := reg.TakeWarning(); w != "" {
		warnings = append(warnings, w)
	}
	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	return reg
}

func newScanner(c config.Config) *adoption.Scanner {
	return adoption.NewScanner(c.StateDir, c.MarkerExt, filepath.Base(c.Assistant))
}

// loadDeps wires every service the dashboard and API need. Problems with
// inputs become warnings.
func loadDeps() (ui.Deps, error) {
	c, warnings := loadConfig()
	reg, regWarnings := loadRegistry()
	warnings = append(warnings, regWarnings...)
	set, err := presets.Load()
	if err != nil {
		system.Logger.Warn("presets unreadable", "err", err)
		warnings = append(warnings, "presets: "+err.Error())
	}
	return ui.Deps{
		Config:   c,
		Registry: reg,
		Scanner:  newScanner(c),
		Presets:  set,
		Launcher: headless.NewLauncher(c.Assistant, reg),
		Warnings: warnings,
	}, nil
}
