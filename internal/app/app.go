package app

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"sessiondeck/internal/config"
	"sessiondeck/internal/system"
	"sessiondeck/internal/ui"
)

// Start runs the dashboard until the user quits. Logs go to the log file
// while the TUI owns the terminal.
func Start(deps ui.Deps) error {
	restore, err := system.LogToFile(config.LogPath())
	if err != nil {
		system.Logger.Warn("cannot open log file; logging to stderr", "path", config.LogPath(), "err", err)
	} else {
		defer restore()
	}
	system.Logger.Info("dashboard starting", "registry", registryPath(deps), "state_dir", deps.Config.StateDir)

	// Initialize global bubblezone manager for mouse-aware zones.
	zone.NewGlobal()
	if _, err := tea.NewProgram(ui.New(deps), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return err
	}
	return nil
}

func registryPath(d ui.Deps) string {
	if d.Registry == nil {
		return ""
	}
	return d.Registry.Path()
}
