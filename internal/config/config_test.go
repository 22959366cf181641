package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingGivesDefaults(t *testing.T) {
	t.Setenv("EDITOR", "")
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Assistant != DefaultAssistant || c.Editor != DefaultEditor || c.Scrollback != DefaultScrollback {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.RefreshInterval() != time.Second {
		t.Fatalf("refresh = %v", c.RefreshInterval())
	}
}

func TestLoadFileOverrides(t *testing.T) {
	t.Setenv("EDITOR", "vim")
	p := filepath.Join(t.TempDir(), "config.toml")
	body := "assistant = \"my-claude\"\nscrollback = 50\nrefresh_interval = \"250ms\"\nmarker_ext = \"status\"\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Assistant != "my-claude" || c.Scrollback != 50 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.RefreshInterval() != 250*time.Millisecond {
		t.Fatalf("refresh = %v", c.RefreshInterval())
	}
	if c.MarkerExt != ".status" {
		t.Fatalf("marker ext = %q", c.MarkerExt)
	}
	if c.Editor != "vim" {
		t.Fatalf("editor should come from $EDITOR, got %q", c.Editor)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte("assistant = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(p)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if c.Assistant != DefaultAssistant {
		t.Fatalf("defaults expected on error, got %+v", c)
	}
}

func TestDirOverride(t *testing.T) {
	t.Setenv("SESSIONDECK_CONFIG_DIR", "/tmp/sd-conf")
	d, err := Dir()
	if err != nil || d != "/tmp/sd-conf" {
		t.Fatalf("Dir() = %q, %v", d, err)
	}
	t.Setenv("SESSIONDECK_CACHE_DIR", "/tmp/sd-cache")
	if RegistryPath() != filepath.Join("/tmp/sd-cache", "processes.json") {
		t.Fatalf("RegistryPath() = %q", RegistryPath())
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/src"); got != "/home/tester/src" {
		t.Fatalf("ExpandHome = %q", got)
	}
	if got := ExpandHome("~"); got != "/home/tester" {
		t.Fatalf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/~x"); got != "/abs/~x" {
		t.Fatalf("ExpandHome = %q", got)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	t.Setenv("EDITOR", "")
	p := filepath.Join(t.TempDir(), "sub", "config.toml")
	want := Default()
	want.Assistant = "claude-beta"
	want.Editor = "hx"
	want.Refresh = "2s"
	if err := SaveFile(p, want); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got != want {
		t.Fatalf("round trip:\n got %+v\nwant %+v", got, want)
	}
}
