package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"sessiondeck/internal/system"
	"sessiondeck/internal/terminal"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.filter.Width = max(msg.Width-8, 10)
		m.prompt.Width = max(msg.Width-10, 10)
		m.help.Width = max(msg.Width-4, 20)
		m.help.Height = max(msg.Height-4, 5)
		if m.showHelp {
			m.help.SetContent(renderHelp(m.help.Width))
		}
		if m.term != nil && m.term.Running() {
			cols, rows := m.termSize()
			if err := m.term.Resize(cols, rows); err != nil {
				system.Logger.Debug("terminal resize failed", "err", err)
			}
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.term != nil {
			return m.handleTerminalKey(msg)
		}
		return m.handleKey(msg)

	case tickMsg:
		m.now = time.Time(msg)
		return m, tea.Batch(refreshCmd(m.deps, false), tickCmd(m.deps.Config.RefreshInterval()))

	case markersChangedMsg:
		return m, tea.Batch(refreshCmd(m.deps, false), watchCmd(m.watch))

	case refreshMsg:
		m.procs = msg.procs
		m.orphans = msg.orphans
		m.clampSelection()
		switch {
		case msg.err != nil:
			m.setStatus(msg.err.Error(), true)
		case msg.manual:
			m.setStatus(fmt.Sprintf("cleanup: removed %d dead entr%s", msg.removed, plural(msg.removed, "y", "ies")), false)
		case msg.removed > 0:
			m.setStatus(fmt.Sprintf("%d managed process%s exited", msg.removed, plural(msg.removed, "", "es")), false)
		}
		if m.deps.Registry != nil {
			if w := m.deps.Registry.TakeWarning(); w != "" {
				m.setStatus(w, true)
			}
		}
		if !m.statusActive() {
			m.nextWarning()
		}
		return m, nil

	case gitMsg:
		m.git = system.GitInfo(msg)
		return m, nil

	case launchedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("launch %s: %v", msg.preset, msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("launched %d instance%s of %s", msg.count, plural(msg.count, "", "s"), msg.preset), false)
		}
		return m, refreshCmd(m.deps, false)

	case killedMsg:
		switch {
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("kill %d: %v", msg.pid, msg.err), true)
		case msg.dead:
			m.setStatus(fmt.Sprintf("pid %d had already exited", msg.pid), false)
		default:
			m.setStatus(fmt.Sprintf("sent SIGTERM to %d", msg.pid), false)
		}
		return m, refreshCmd(m.deps, false)

	case killAllMsg:
		r := msg.report
		text := fmt.Sprintf("terminated %d, already gone %d", len(r.Killed), len(r.AlreadyDead))
		if len(r.Failed) > 0 {
			text += fmt.Sprintf(", failed %d", len(r.Failed))
		}
		m.setStatus(text, msg.err != nil)
		return m, refreshCmd(m.deps, false)

	case termFrameMsg:
		if m.term == nil || msg.gen != m.termGen {
			return m, nil
		}
		return m, termFrameCmd(m.termGen)

	case termExitedMsg:
		if msg.s == m.term && m.term != nil {
			m.termEnded = true
			m.setStatus("session ended · ctrl+q to close", false)
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.showHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	if m.confirmKillAll {
		switch msg.String() {
		case "y", "Y":
			m.confirmKillAll = false
			if m.deps.Registry == nil {
				return m, nil
			}
			return m, killAllCmd(m.deps.Registry)
		case "n", "N", "esc", "q":
			m.confirmKillAll = false
		}
		return m, nil
	}

	if m.prompting {
		switch msg.Type {
		case tea.KeyEsc:
			m.prompting = false
			m.prompt.Blur()
			m.prompt.SetValue("")
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.prompt.Value())
			m.prompting = false
			m.prompt.Blur()
			m.prompt.SetValue("")
			return m.openTerminal("edit "+path, m.selectedDir(), func(s *terminal.Session) error {
				return s.SpawnEditor(path)
			})
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if m.filtering {
		switch msg.Type {
		case tea.KeyEsc:
			m.filter.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.filtering = false
			m.filter.Blur()
			m.clampSelection()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.sel[panelProcesses], m.sel[panelOrphans] = 0, 0
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "tab":
		m.focus = (m.focus + 1) % panelCount
	case "shift+tab":
		m.focus = (m.focus + panelCount - 1) % panelCount
	case "j", "down":
		if m.sel[m.focus] < m.panelLen(m.focus)-1 {
			m.sel[m.focus]++
		}
	case "k", "up":
		if m.sel[m.focus] > 0 {
			m.sel[m.focus]--
		}
	case "g", "home":
		m.sel[m.focus] = 0
	case "G", "end":
		m.sel[m.focus] = max(m.panelLen(m.focus)-1, 0)
	case "enter":
		return m.activate()
	case "n":
		return m.openTerminal("new session", m.selectedDir(), func(s *terminal.Session) error {
			return s.SpawnNew()
		})
	case "e":
		m.prompting = true
		return m, m.prompt.Focus()
	case "x":
		if m.focus != panelProcesses {
			m.setStatus("select a managed process to terminate", true)
			return m, nil
		}
		if p, ok := m.selectedProcess(); ok && m.deps.Registry != nil {
			return m, killCmd(m.deps.Registry, p.PID)
		}
	case "K":
		if len(m.procs) == 0 {
			m.setStatus("no managed processes", false)
			return m, nil
		}
		m.confirmKillAll = true
	case "c":
		return m, refreshCmd(m.deps, true)
	case "r":
		if m.deps.Presets != nil {
			if err := m.deps.Presets.Reload(); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.presetList = m.deps.Presets.All()
			m.clampSelection()
			m.setStatus(fmt.Sprintf("loaded %d preset%s", len(m.presetList), plural(len(m.presetList), "", "s")), false)
		}
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "?":
		m.showHelp = true
		m.help.SetContent(renderHelp(m.help.Width))
		m.help.GotoTop()
	}
	return m, nil
}

// activate runs the enter action for the focused panel.
func (m model) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case panelPresets:
		p, ok := m.selectedPreset()
		if !ok {
			m.setStatus("no presets; add some to "+m.presetsPath(), false)
			return m, nil
		}
		if m.deps.Launcher == nil {
			return m, nil
		}
		m.setStatus(fmt.Sprintf("launching %s…", p.Name), false)
		return m, launchCmd(m.deps.Launcher, p)
	case panelProcesses:
		if p, ok := m.selectedProcess(); ok {
			return m.resume(p.SessionID, p.Cwd)
		}
	case panelOrphans:
		if o, ok := m.selectedOrphan(); ok {
			return m.resume(o.SessionID, o.Cwd)
		}
	}
	return m, nil
}

func (m model) resume(sessionID, dir string) (tea.Model, tea.Cmd) {
	return m.openTerminal("resume "+shortID(sessionID), "", func(s *terminal.Session) error {
		return s.SpawnResume(dir, sessionID)
	})
}

// openTerminal allocates an embedded terminal in dir and starts it with
// spawn. Failures stay on the dashboard with an error status.
func (m model) openTerminal(title, dir string, spawn func(*terminal.Session) error) (tea.Model, tea.Cmd) {
	cols, rows := m.termSize()
	opts := []terminal.Option{terminal.WithConfig(m.deps.Config)}
	if dir != "" {
		opts = append(opts, terminal.WithDir(dir))
	}
	s, err := terminal.New(cols, rows, opts...)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if err := spawn(s); err != nil {
		_ = s.Close()
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if s.State() == terminal.StateCreated {
		// nothing was started (empty editor path)
		_ = s.Close()
		return m, nil
	}
	m.term, m.termTitle, m.termEnded = s, title, false
	m.termGen++
	m.setStatus("ctrl+q closes the terminal", false)
	return m, tea.Batch(termFrameCmd(m.termGen), termWaitCmd(s))
}

func (m model) closeTerminal() model {
	if m.term != nil {
		if err := m.term.Close(); err != nil {
			system.Logger.Debug("terminal close", "err", err)
		}
	}
	m.term, m.termTitle, m.termEnded = nil, "", false
	return m
}

func (m model) handleTerminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isTerminalExitKey(msg) {
		m = m.closeTerminal()
		return m, refreshCmd(m.deps, false)
	}
	if m.termEnded {
		return m, nil
	}
	b := keyToBytes(msg, m.term.Snapshot().AppCursorKeys)
	if b == nil {
		return m, nil
	}
	if err := m.term.Write(b); err != nil {
		m.termEnded = true
		if !errors.Is(err, terminal.ErrNotRunning) {
			system.Logger.Debug("terminal write failed", "err", err)
		}
		m.setStatus("session ended · ctrl+q to close", true)
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.term != nil || msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for p := panel(0); p < panelCount; p++ {
		for i := 0; i < m.panelLen(p); i++ {
			if zone.Get(rowZone(p, i)).InBounds(msg) {
				if m.focus == p && m.sel[p] == i {
					return m.activate()
				}
				m.focus, m.sel[p] = p, i
				return m, nil
			}
		}
		if zone.Get(p.zoneID()).InBounds(msg) {
			m.focus = p
			return m, nil
		}
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m = m.closeTerminal()
	if m.cancelWatch != nil {
		m.cancelWatch()
	}
	m.quitting = true
	return m, tea.Quit
}

func (m model) presetsPath() string {
	if m.deps.Presets != nil {
		return m.deps.Presets.Path()
	}
	return "presets.toml"
}

func rowZone(p panel, i int) string { return fmt.Sprintf("%s.%d", p.zoneID(), i) }

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
