package ui

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/config"
	"sessiondeck/internal/headless"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/system"
	"sessiondeck/internal/terminal"
)

// Deps are the services the dashboard drives. Any of them may be nil.
type Deps struct {
	Config   config.Config
	Registry *registry.Registry
	Scanner  *adoption.Scanner
	Presets  *presets.Set
	Launcher *headless.Launcher
	// Warnings are shown in the status line on start, one at a time.
	Warnings []string
}

type panel int

const (
	panelPresets panel = iota
	panelProcesses
	panelOrphans
	panelCount
)

func (p panel) title() string {
	switch p {
	case panelPresets:
		return IconPreset() + " Presets"
	case panelProcesses:
		return IconProcess() + " Managed"
	case panelOrphans:
		return IconOrphan() + " Orphans"
	}
	return ""
}

func (p panel) zoneID() string {
	switch p {
	case panelPresets:
		return "presets"
	case panelProcesses:
		return "procs"
	}
	return "orphans"
}

const statusTTL = 6 * time.Second

// model for the dashboard TUI
type model struct {
	deps Deps
	cwd  string

	width  int
	height int
	now    time.Time
	git    system.GitInfo

	focus panel
	sel   [panelCount]int

	presetList []presets.Preset
	procs      []registry.ManagedProcess
	orphans    []adoption.OrphanSession

	// filter over processes and orphans
	filter    textinput.Model
	filtering bool

	// editor file prompt
	prompt    textinput.Model
	prompting bool

	confirmKillAll bool

	showHelp bool
	help     viewport.Model

	term      *terminal.Session
	termTitle string
	termEnded bool
	termGen   int

	status      string
	statusErr   bool
	statusUntil time.Time
	warnings    []string

	watch       <-chan struct{}
	cancelWatch context.CancelFunc

	quitting bool
}

func newModel(d Deps) model {
	wd, _ := os.Getwd()
	m := model{deps: d, cwd: wd, now: time.Now(), warnings: d.Warnings}
	if d.Presets != nil {
		m.presetList = d.Presets.All()
	}
	if d.Registry != nil {
		m.procs = d.Registry.All()
	}

	fi := textinput.New()
	fi.Prompt = IconFilter() + " "
	fi.Placeholder = "filter processes and orphans"
	fi.CharLimit = 256
	m.filter = fi

	pi := textinput.New()
	pi.Prompt = "edit › "
	pi.Placeholder = "path/to/file"
	pi.CharLimit = 4096
	m.prompt = pi

	m.help = viewport.New(80, 20)

	if d.Scanner != nil && d.Scanner.StateDir != "" {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := adoption.Watch(ctx, d.Scanner.StateDir, d.Scanner.Ext)
		if err != nil {
			cancel()
			system.Logger.Debug("marker watch unavailable; polling only", "dir", d.Scanner.StateDir, "err", err)
		} else {
			m.watch, m.cancelWatch = ch, cancel
		}
	}
	m.nextWarning()
	return m
}

// New returns the dashboard model.
func New(d Deps) tea.Model { return newModel(d) }

func (m model) Init() tea.Cmd {
	return tea.Batch(
		refreshCmd(m.deps, false),
		tickCmd(m.deps.Config.RefreshInterval()),
		watchCmd(m.watch),
		gitCmd(m.cwd),
	)
}

func (m *model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
	m.statusUntil = m.now.Add(statusTTL)
}

// nextWarning moves the next pending startup warning into the status line.
func (m *model) nextWarning() {
	if len(m.warnings) == 0 {
		return
	}
	m.setStatus(m.warnings[0], true)
	m.warnings = m.warnings[1:]
}

func (m model) statusActive() bool {
	return m.status != "" && m.now.Before(m.statusUntil)
}

// procLabels and orphanLabels are the strings the filter matches against.
func (m model) procLabels() []string {
	out := make([]string, len(m.procs))
	for i, p := range m.procs {
		out[i] = p.PresetName + " " + p.SessionID + " " + p.Cwd
	}
	return out
}

func (m model) orphanLabels() []string {
	out := make([]string, len(m.orphans))
	for i, o := range m.orphans {
		out[i] = o.SessionID + " " + o.Cwd
	}
	return out
}

func (m model) visibleProcs() []int   { return filterIndices(m.filter.Value(), m.procLabels()) }
func (m model) visibleOrphans() []int { return filterIndices(m.filter.Value(), m.orphanLabels()) }

// panelLen is the number of selectable rows in p.
func (m model) panelLen(p panel) int {
	switch p {
	case panelPresets:
		return len(m.presetList)
	case panelProcesses:
		return len(m.visibleProcs())
	case panelOrphans:
		return len(m.visibleOrphans())
	}
	return 0
}

func (m *model) clampSelection() {
	for p := panel(0); p < panelCount; p++ {
		n := m.panelLen(p)
		if m.sel[p] >= n {
			m.sel[p] = n - 1
		}
		if m.sel[p] < 0 {
			m.sel[p] = 0
		}
	}
}

func (m model) selectedPreset() (presets.Preset, bool) {
	if m.sel[panelPresets] < len(m.presetList) && len(m.presetList) > 0 {
		return m.presetList[m.sel[panelPresets]], true
	}
	return presets.Preset{}, false
}

func (m model) selectedProcess() (registry.ManagedProcess, bool) {
	vis := m.visibleProcs()
	if i := m.sel[panelProcesses]; i < len(vis) {
		return m.procs[vis[i]], true
	}
	return registry.ManagedProcess{}, false
}

func (m model) selectedOrphan() (adoption.OrphanSession, bool) {
	vis := m.visibleOrphans()
	if i := m.sel[panelOrphans]; i < len(vis) {
		return m.orphans[vis[i]], true
	}
	return adoption.OrphanSession{}, false
}

// selectedDir is the working directory of the focused selection, falling
// back to the dashboard's own.
func (m model) selectedDir() string {
	switch m.focus {
	case panelPresets:
		if p, ok := m.selectedPreset(); ok && p.Cwd != "" {
			return p.Cwd
		}
	case panelProcesses:
		if p, ok := m.selectedProcess(); ok && p.Cwd != "" {
			return p.Cwd
		}
	case panelOrphans:
		if o, ok := m.selectedOrphan(); ok && o.Cwd != "" {
			return o.Cwd
		}
	}
	return m.cwd
}

// termSize is the emulator size for the current window.
func (m model) termSize() (cols, rows int) {
	cols, rows = m.width, m.height-2
	if cols < 20 {
		cols = 80
	}
	if rows < 5 {
		rows = 24
	}
	return cols, rows
}
