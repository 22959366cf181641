package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const appName = "sessiondeck"

// Dir returns the sessiondeck config directory under the user config base.
// On Linux, this typically resolves to $XDG_CONFIG_HOME/sessiondeck; on macOS
// to ~/Library/Application Support/sessiondeck; and on Windows to %AppData%/sessiondeck.
// SESSIONDECK_CONFIG_DIR overrides the location.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("SESSIONDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, appName), nil
}

// CacheDir returns the directory holding the process registry and logs.
// SESSIONDECK_CACHE_DIR overrides it; without a user cache dir the
// system temp dir is used.
func CacheDir() string {
	if v := strings.TrimSpace(os.Getenv("SESSIONDECK_CACHE_DIR")); v != "" {
		return v
	}
	base, err := os.UserCacheDir()
	if err != nil || strings.TrimSpace(base) == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, appName)
}

// RegistryPath is the JSON process registry shared by all instances.
func RegistryPath() string { return filepath.Join(CacheDir(), "processes.json") }

// LogPath is where the dashboard writes logs while it owns the terminal.
func LogPath() string { return filepath.Join(CacheDir(), appName+".log") }

// ConfigPath returns <Dir>/config.toml.
func ConfigPath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.toml"), nil
}

// PresetsPath returns <Dir>/presets.toml.
func PresetsPath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "presets.toml"), nil
}

// SessionStateDir is where the assistant's hooks drop per-session
// status markers (~/.claude/session-state).
func SessionStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".claude", "session-state")
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
