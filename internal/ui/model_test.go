package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/config"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/proctable"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/testutil"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func sampleProcs() []registry.ManagedProcess {
	return []registry.ManagedProcess{
		{PID: 4242, SessionID: "sess-aaaaaaaaaa", PresetName: "api", Cwd: "/srv/api", Status: registry.StatusRunning},
		{PID: 4243, SessionID: "sess-bbbbbbbbbb", PresetName: "web", InstanceIndex: 1, Cwd: "/srv/web", Status: registry.StatusIdle},
		{PID: 4244, SessionID: "sess-cccccccccc", PresetName: "jobs", Cwd: "/srv/jobs", Status: registry.StatusRunning},
	}
}

func sampleOrphans() []adoption.OrphanSession {
	return []adoption.OrphanSession{
		{SessionID: "orph-1111111111", PID: 777, Cwd: "/home/me/x", Status: "working"},
		{SessionID: "orph-2222222222", Status: "idle"},
	}
}

// loaded returns a sized dashboard showing the sample data.
func loaded(t *testing.T) model {
	t.Helper()
	m := newModel(Deps{Config: config.Default()})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return step(t, m, refreshMsg{procs: sampleProcs(), orphans: sampleOrphans()})
}

func step(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		m = step(t, m, key(k))
	}
	return m
}

func TestNavigation(t *testing.T) {
	m := loaded(t)
	if m.focus != panelPresets {
		t.Fatalf("initial focus = %v", m.focus)
	}
	m = press(t, m, "tab", "j", "j", "j")
	if m.focus != panelProcesses || m.sel[panelProcesses] != 2 {
		t.Fatalf("focus=%v sel=%d, want processes/2", m.focus, m.sel[panelProcesses])
	}
	m = press(t, m, "g")
	if m.sel[panelProcesses] != 0 {
		t.Fatalf("g: sel=%d", m.sel[panelProcesses])
	}
	m = press(t, m, "G", "k")
	if p, _ := m.selectedProcess(); p.PID != 4243 {
		t.Fatalf("selected pid %d, want 4243", p.PID)
	}
	m = press(t, m, "shift+tab", "shift+tab")
	if m.focus != panelOrphans {
		t.Fatalf("shift+tab wrap: focus=%v", m.focus)
	}
	if got := m.selectedDir(); got != "/home/me/x" {
		t.Fatalf("selectedDir = %q", got)
	}
}

func TestRefreshClampsSelection(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "tab", "G")
	m = step(t, m, refreshMsg{procs: sampleProcs()[:1]})
	if m.sel[panelProcesses] != 0 {
		t.Fatalf("sel = %d after shrink", m.sel[panelProcesses])
	}
	if len(m.orphans) != 0 {
		t.Fatalf("orphans not replaced")
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "tab", "/", "web", "enter")
	if m.filtering {
		t.Fatalf("enter should leave filter input")
	}
	if vis := m.visibleProcs(); len(vis) != 1 {
		t.Fatalf("visible = %v", vis)
	}
	if p, ok := m.selectedProcess(); !ok || p.PresetName != "web" {
		t.Fatalf("selected %+v", p)
	}
	m = press(t, m, "/", "esc")
	if m.filter.Value() != "" || len(m.visibleProcs()) != 3 {
		t.Fatalf("esc should clear the filter, got %q", m.filter.Value())
	}
}

func TestKillAllNeedsConfirmation(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "K")
	if !m.confirmKillAll {
		t.Fatalf("K should ask for confirmation")
	}
	view := xansi.Strip(m.View())
	if !strings.Contains(view, "terminate 3 managed processes?") {
		t.Fatalf("confirmation missing from view:\n%s", view)
	}
	next, cmd := m.Update(key("n"))
	m = next.(model)
	if m.confirmKillAll || cmd != nil {
		t.Fatalf("n should cancel without a command")
	}

	empty := newModel(Deps{Config: config.Default()})
	empty = press(t, empty, "K")
	if empty.confirmKillAll || empty.status != "no managed processes" {
		t.Fatalf("K with nothing managed: confirm=%v status=%q", empty.confirmKillAll, empty.status)
	}
}

func TestKillNeedsProcessPanel(t *testing.T) {
	m := loaded(t)
	m = press(t, m, "x")
	if !m.statusErr || !strings.Contains(m.status, "managed process") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestViewShowsPanels(t *testing.T) {
	m := loaded(t)
	view := xansi.Strip(m.View())
	for _, want := range []string{"sessiondeck", "Presets", "Managed (3)", "Orphans (2)", "4243", "web#1", "orph-111", "no presets"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	for i, ln := range strings.Split(view, "\n") {
		if w := xansi.StringWidth(ln); w > 120 {
			t.Fatalf("line %d is %d cells wide", i, w)
		}
	}

	narrow := step(t, m, tea.WindowSizeMsg{Width: 60, Height: 40})
	if v := xansi.Strip(narrow.View()); !strings.Contains(v, "Orphans (2)") {
		t.Fatalf("stacked view missing orphans:\n%s", v)
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t)
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("q should return tea.Quit")
	}
	if v := next.View(); v != "Goodbye!\n" {
		t.Fatalf("view after quit = %q", v)
	}
}

func TestWarningsQueue(t *testing.T) {
	m := newModel(Deps{Config: config.Default(), Warnings: []string{"first", "second"}})
	if m.status != "first" || !m.statusErr {
		t.Fatalf("status = %q", m.status)
	}
	m.statusUntil = m.now
	m = step(t, m, refreshMsg{})
	if m.status != "second" {
		t.Fatalf("status = %q, want second", m.status)
	}
}

func TestManualCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processes.json")
	reg, err := registry.Load(path, registry.WithLister(testutil.FakeLister(proctable.Process{PID: 4242, Name: "claude"})))
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(4242, "s1", "api", 0, "/srv/api", nil); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(5555, "s2", "api", 1, "/srv/api", nil); err != nil {
		t.Fatal(err)
	}
	m := newModel(Deps{Config: config.Default(), Registry: reg})
	m = press(t, m, "tab")
	_, cmd := m.Update(key("c"))
	if cmd == nil {
		t.Fatalf("c should schedule a cleanup")
	}
	msg, ok := cmd().(refreshMsg)
	if !ok || msg.removed != 1 || len(msg.procs) != 1 {
		t.Fatalf("refresh = %+v", msg)
	}
	m = step(t, m, msg)
	if m.status != "cleanup: removed 1 dead entry" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestReloadPresets(t *testing.T) {
	dir := t.TempDir()
	body := "[[preset]]\nname = \"api\"\nshortcut = \"a\"\ncwd = \"" + filepath.ToSlash(dir) + "\"\ninstances = 2\n"
	path := testutil.WriteFile(t, dir, "presets.toml", body)
	set, err := presets.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	m := newModel(Deps{Config: config.Default(), Presets: set})
	if len(m.presetList) != 1 {
		t.Fatalf("presets = %+v", m.presetList)
	}
	testutil.WriteFile(t, dir, "presets.toml", body+"\n[[preset]]\nname = \"web\"\ncwd = \""+filepath.ToSlash(dir)+"\"\n")
	m = press(t, m, "r")
	if len(m.presetList) != 2 || m.status != "loaded 2 presets" {
		t.Fatalf("after reload: %d presets, status %q", len(m.presetList), m.status)
	}
	if !strings.Contains(xansi.Strip(m.View()), "[a] api ×2") {
		t.Fatalf("preset row missing:\n%s", xansi.Strip(m.View()))
	}
}
