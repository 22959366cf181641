package presets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"sessiondeck/internal/shellsafe"
	"sessiondeck/internal/testutil"
)

func TestLoadWritesDefaultFile(t *testing.T) {
	configDir, _ := testutil.IsolateDirs(t)
	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("default file should define no presets, got %+v", s.All())
	}
	want := filepath.Join(configDir, "presets.toml")
	if s.Path() != want {
		t.Fatalf("path = %s, want %s", s.Path(), want)
	}
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("default file not written: %v", err)
	}
	if !strings.Contains(string(b), "[[preset]]") {
		t.Fatalf("default file lacks an example:\n%s", b)
	}
}

func TestLoadFileParsesAndExpands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("HOME based expansion")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	p := testutil.WriteFile(t, dir, "presets.toml", `
[[preset]]
name = "energyboard"
shortcut = "enb"
cwd = "~/dev/energyboard"
add_dirs = ["~/dev/shared", "/opt/lib"]
instances = 2
extra_args = ["--verbose"]

[[preset]]
name = "scratch"
cwd = "/tmp/scratch"
`)
	s, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	enb, ok := s.ByShortcut("enb")
	if !ok || enb.Name != "energyboard" {
		t.Fatalf("ByShortcut = %+v, %v", enb, ok)
	}
	if enb.Cwd != filepath.Join(home, "dev", "energyboard") {
		t.Fatalf("cwd not expanded: %s", enb.Cwd)
	}
	if len(enb.AddDirs) != 2 || enb.AddDirs[0] != filepath.Join(home, "dev", "shared") || enb.AddDirs[1] != "/opt/lib" {
		t.Fatalf("add_dirs = %v", enb.AddDirs)
	}
	if enb.Instances != 2 || len(enb.ExtraArgs) != 1 {
		t.Fatalf("instances/extra = %d %v", enb.Instances, enb.ExtraArgs)
	}
	scratch, ok := s.Find("scratch")
	if !ok || scratch.Instances != 1 || scratch.ExtraArgs == nil {
		t.Fatalf("defaults not applied: %+v", scratch)
	}
	if _, ok := s.ByShortcut(""); ok {
		t.Fatalf("empty shortcut must not match")
	}
	if p, ok := s.Lookup("enb"); !ok || p.Name != "energyboard" {
		t.Fatalf("Lookup by shortcut = %+v", p)
	}
}

func TestLoadFileRejectsUnsafePresets(t *testing.T) {
	cases := map[string]struct {
		body string
		want error
	}{
		"traversal": {`[[preset]]
name = "a"
cwd = "/srv/../etc"`, shellsafe.ErrPathTraversal},
		"add dir traversal": {`[[preset]]
name = "a"
cwd = "/srv"
add_dirs = ["../x"]`, shellsafe.ErrPathTraversal},
		"bad name": {`[[preset]]
name = "a b"
cwd = "/srv"`, shellsafe.ErrInvalidName},
		"no cwd": {`[[preset]]
name = "a"`, ErrInvalidPreset},
		"negative instances": {`[[preset]]
name = "a"
cwd = "/srv"
instances = -1`, ErrInvalidPreset},
		"duplicate": {`[[preset]]
name = "a"
cwd = "/srv"
[[preset]]
name = "a"
cwd = "/srv2"`, ErrInvalidPreset},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := testutil.WriteFile(t, t.TempDir(), "presets.toml", tc.body)
			_, err := LoadFile(p)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	p := testutil.WriteFile(t, dir, "presets.toml", "[[preset]]\nname = \"a\"\ncwd = \"/srv\"\n")
	s, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, dir, "presets.toml", "[[preset]\nbroken")
	if err := s.Reload(); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, ok := s.Find("a"); !ok {
		t.Fatalf("previous presets dropped after failed reload")
	}
}
