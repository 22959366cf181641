// Package presets loads the project presets used for headless launches.
package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"sessiondeck/internal/config"
	"sessiondeck/internal/shellsafe"
	"sessiondeck/internal/store"
)

// ErrInvalidPreset is returned when a preset fails validation.
var ErrInvalidPreset = errors.New("invalid preset")

// Preset describes one project: where to run and how many instances.
type Preset struct {
	Name     string `toml:"name" json:"name"`
	Shortcut string `toml:"shortcut,omitempty" json:"shortcut,omitempty"`
	// Cwd supports a leading ~.
	Cwd       string   `toml:"cwd" json:"cwd"`
	AddDirs   []string `toml:"add_dirs,omitempty" json:"add_dirs"`
	Instances int      `toml:"instances,omitempty" json:"instances"`
	ExtraArgs []string `toml:"extra_args,omitempty" json:"extra_args"`
}

type file struct {
	Preset []Preset `toml:"preset"`
}

const defaultFile = `# sessiondeck presets
# Each [[preset]] launches one or more headless assistant instances.
#
# [[preset]]
# name = "myproject"
# shortcut = "mp"
# cwd = "~/dev/myproject"
# add_dirs = ["~/dev/shared-lib"]
# instances = 2
# extra_args = ["--dangerously-skip-permissions"]
`

// Set is a loaded presets file. It is safe for concurrent use.
type Set struct {
	mu      sync.RWMutex
	path    string
	presets []Preset
}

// Load reads presets from config.PresetsPath, writing a commented default
// file first when none exists.
func Load() (*Set, error) {
	p, err := config.PresetsPath()
	if err != nil {
		return &Set{}, err
	}
	return LoadFile(p)
}

// LoadFile reads presets from path, creating the default file if missing.
// The returned Set is never nil.
func LoadFile(path string) (*Set, error) {
	s := &Set{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := store.WriteFileAtomic(path, []byte(defaultFile), 0o644); err != nil {
			return s, fmt.Errorf("write default presets: %w", err)
		}
	}
	return s, s.Reload()
}

// Reload re-reads the file. On error the previous presets are kept.
func (s *Set) Reload() error {
	var f file
	if _, err := toml.DecodeFile(s.path, &f); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	out := make([]Preset, 0, len(f.Preset))
	seen := map[string]bool{}
	for i, p := range f.Preset {
		p = normalize(p)
		if err := Validate(p); err != nil {
			return fmt.Errorf("%s: preset #%d: %w", filepath.Base(s.path), i+1, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: %w: duplicate name %q", filepath.Base(s.path), ErrInvalidPreset, p.Name)
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	s.mu.Lock()
	s.presets = out
	s.mu.Unlock()
	return nil
}

func normalize(p Preset) Preset {
	p.Name = strings.TrimSpace(p.Name)
	p.Shortcut = strings.TrimSpace(p.Shortcut)
	p.Cwd = config.ExpandHome(strings.TrimSpace(p.Cwd))
	dirs := make([]string, 0, len(p.AddDirs))
	for _, d := range p.AddDirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, config.ExpandHome(d))
		}
	}
	p.AddDirs = dirs
	if p.ExtraArgs == nil {
		p.ExtraArgs = []string{}
	}
	if p.Instances == 0 {
		p.Instances = 1
	}
	return p
}

// Validate checks names and paths before anything is spawned from p.
func Validate(p Preset) error {
	if err := shellsafe.ValidateIdentifier(p.Name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	if p.Shortcut != "" {
		if err := shellsafe.ValidateIdentifier(p.Shortcut); err != nil {
			return fmt.Errorf("%w: shortcut: %w", ErrInvalidPreset, err)
		}
	}
	if p.Cwd == "" {
		return fmt.Errorf("%w: %s: cwd is required", ErrInvalidPreset, p.Name)
	}
	if err := shellsafe.ValidatePath(p.Cwd); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPreset, p.Name, err)
	}
	for _, d := range p.AddDirs {
		if err := shellsafe.ValidatePath(d); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidPreset, p.Name, err)
		}
	}
	if p.Instances < 1 {
		return fmt.Errorf("%w: %s: instances must be at least 1", ErrInvalidPreset, p.Name)
	}
	return nil
}

// All returns the presets in file order.
func (s *Set) All() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Preset(nil), s.presets...)
}

// Len is the number of presets.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presets)
}

// Path of the backing file.
func (s *Set) Path() string { return s.path }

// Find returns the preset with the exact name.
func (s *Set) Find(name string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ByShortcut returns the preset whose shortcut equals sc.
func (s *Set) ByShortcut(sc string) (Preset, bool) {
	if sc == "" {
		return Preset{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.presets {
		if p.Shortcut == sc {
			return p, true
		}
	}
	return Preset{}, false
}

// Lookup resolves a name first, then a shortcut.
func (s *Set) Lookup(key string) (Preset, bool) {
	if p, ok := s.Find(key); ok {
		return p, true
	}
	return s.ByShortcut(key)
}
