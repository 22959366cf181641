package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"sessiondeck/internal/store"
)

// Config holds user-tunable settings read from config.toml.
// Zero values are replaced by defaults in Load.
type Config struct {
	// Assistant is the executable launched inside terminals and headless.
	Assistant string `toml:"assistant"`
	// PermissionFlag is appended to every interactive launch.
	PermissionFlag string `toml:"permission_flag"`
	Editor         string `toml:"editor"`
	// Shell runs the resume and editor command lines.
	Shell      string `toml:"shell"`
	Scrollback int    `toml:"scrollback"`
	// Refresh is a Go duration string such as "1s".
	Refresh   string `toml:"refresh_interval"`
	StateDir  string `toml:"state_dir"`
	MarkerExt string `toml:"marker_ext"`
	LogLevel  string `toml:"log_level"`
}

const (
	DefaultAssistant      = "claude"
	DefaultPermissionFlag = "--dangerously-skip-permissions"
	DefaultEditor         = "nvim"
	DefaultShell          = "bash"
	DefaultScrollback     = 1000
	DefaultRefresh        = time.Second
	DefaultMarkerExt      = ".state"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Assistant) == "" {
		c.Assistant = DefaultAssistant
	}
	if c.PermissionFlag == "" {
		c.PermissionFlag = DefaultPermissionFlag
	}
	if strings.TrimSpace(c.Editor) == "" {
		if e := strings.TrimSpace(os.Getenv("EDITOR")); e != "" {
			c.Editor = e
		} else {
			c.Editor = DefaultEditor
		}
	}
	if strings.TrimSpace(c.Shell) == "" {
		c.Shell = DefaultShell
	}
	if c.Scrollback <= 0 {
		c.Scrollback = DefaultScrollback
	}
	if strings.TrimSpace(c.StateDir) == "" {
		c.StateDir = SessionStateDir()
	} else {
		c.StateDir = ExpandHome(c.StateDir)
	}
	if c.MarkerExt == "" {
		c.MarkerExt = DefaultMarkerExt
	}
	if !strings.HasPrefix(c.MarkerExt, ".") {
		c.MarkerExt = "." + c.MarkerExt
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// RefreshInterval parses Refresh, falling back to DefaultRefresh.
func (c Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Refresh))
	if err != nil || d <= 0 {
		return DefaultRefresh
	}
	return d
}

// Load reads config.toml from ConfigPath. A missing file yields defaults.
func Load() (Config, error) {
	p, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads config from path. A missing file yields defaults; a
// malformed file yields defaults plus the decode error.
func LoadFile(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

// SaveFile writes c to path atomically.
func SaveFile(path string, c Config) error {
	var buf bytes.Buffer
	buf.WriteString("# sessiondeck settings\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return store.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
