package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/terminal"
	appver "sessiondeck/internal/version"
)

const (
	cardGap = 1
	// below this width the three panels are stacked
	stackWidth = 96
)

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	var out string
	switch {
	case m.term != nil:
		out = m.terminalView()
	case m.showHelp:
		out = m.helpView()
	default:
		out = m.dashboardView()
	}
	return zone.Scan(out)
}

func (m model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 30
	}
	return w, h
}

func (m model) header(width int) string {
	title := AccentBold().Render("sessiondeck")
	dir := MutedStyle().Render(m.cwd)
	return fitWidth(" "+title+"  "+dir, width)
}

func (m model) dashboardView() string {
	w, h := m.size()
	b := &strings.Builder{}
	b.WriteString(m.header(w))
	b.WriteString("\n")

	// header, detail, input and status bar lines
	body := max(h-4, 6)
	panels := [panelCount][]string{
		m.presetRows(),
		m.processRows(),
		m.orphanRows(),
	}
	if w >= stackWidth {
		inner := calcInnerWidths(w, int(panelCount), cardGap)
		lines := max(body-2, 1)
		cards := make([]string, 0, panelCount)
		for p := panel(0); p < panelCount; p++ {
			cards = append(cards, m.card(p, inner[p], panels[p], lines))
		}
		b.WriteString(joinCols(cards, inner, cardGap))
	} else {
		inner := max(w-2, 12)
		lines := max(body/int(panelCount)-2, 1)
		for p := panel(0); p < panelCount; p++ {
			if p > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.card(p, inner, panels[p], lines))
		}
	}
	b.WriteString("\n")
	b.WriteString(fitWidth(" "+m.detailLine(), w))
	b.WriteString("\n")
	b.WriteString(fitWidth(" "+m.inputLine(), w))
	b.WriteString("\n")
	b.WriteString(m.statusBar(w, "DECK", Vitesse.Primary))
	return b.String()
}

// card renders one panel, scrolled so the selection stays visible. Each
// row carries a click zone.
func (m model) card(p panel, inner int, rows []string, lines int) string {
	focused := m.focus == p
	sel := m.sel[p]
	start, end := scrollWindow(len(rows), sel, lines)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		ln := fitWidth(rows[i], inner-1)
		switch {
		case i == sel && focused:
			ln = SelectedStyle().Render(xansi.Strip(ln))
		case i == sel:
			ln = lipgloss.NewStyle().Bold(true).Render(ln)
		}
		out = append(out, zone.Mark(rowZone(p, i), ln))
	}
	if len(rows) == 0 {
		out = append(out, MutedStyle().Render(m.emptyText(p)))
	}
	title := p.title()
	if n := len(rows); n > 0 {
		title += fmt.Sprintf(" (%d)", n)
	}
	return zone.Mark(p.zoneID(), renderCard(inner, title, out, lines, focused))
}

func (m model) emptyText(p panel) string {
	switch p {
	case panelPresets:
		return "no presets · edit " + m.presetsPath()
	case panelProcesses:
		if m.filter.Value() != "" {
			return "no match"
		}
		return "nothing launched"
	}
	if m.filter.Value() != "" {
		return "no match"
	}
	return "no orphan sessions"
}

func (m model) presetRows() []string {
	rows := make([]string, 0, len(m.presetList))
	for _, p := range m.presetList {
		var sc string
		if p.Shortcut != "" {
			sc = lipgloss.NewStyle().Foreground(Vitesse.Yellow).Render("["+p.Shortcut+"]") + " "
		}
		inst := MutedStyle().Render(fmt.Sprintf("×%d", p.Instances))
		rows = append(rows, fmt.Sprintf("%s%s %s  %s", sc, p.Name, inst, MutedStyle().Render(p.Cwd)))
	}
	return rows
}

func (m model) processRows() []string {
	vis := m.visibleProcs()
	rows := make([]string, 0, len(vis))
	for _, i := range vis {
		p := m.procs[i]
		dot := lipgloss.NewStyle().Foreground(processColor(p.Status)).Render("●")
		name := p.PresetName
		if name == "" {
			name = "-"
		}
		age := MutedStyle().Render(since(p.StartedAt, m.now))
		rows = append(rows, fmt.Sprintf("%s %-7d %s#%d %s %s", dot, p.PID, name, p.InstanceIndex, shortID(p.SessionID), age))
	}
	return rows
}

func (m model) orphanRows() []string {
	vis := m.visibleOrphans()
	rows := make([]string, 0, len(vis))
	for _, i := range vis {
		o := m.orphans[i]
		st := o.MarkerStatus()
		dot := lipgloss.NewStyle().Foreground(markerColor(st)).Render("●")
		pid := "-"
		if o.PID > 0 {
			pid = fmt.Sprint(o.PID)
		}
		rows = append(rows, fmt.Sprintf("%s %s %-7s %s", dot, shortID(o.SessionID), pid, MutedStyle().Render(o.Cwd)))
	}
	return rows
}

// detailLine describes the focused selection in full.
func (m model) detailLine() string {
	muted := MutedStyle().Render
	switch m.focus {
	case panelPresets:
		p, ok := m.selectedPreset()
		if !ok {
			return ""
		}
		parts := []string{p.Cwd}
		if len(p.AddDirs) > 0 {
			parts = append(parts, "add-dirs "+strings.Join(p.AddDirs, ", "))
		}
		if len(p.ExtraArgs) > 0 {
			parts = append(parts, "args "+strings.Join(p.ExtraArgs, " "))
		}
		return muted(strings.Join(parts, " · "))
	case panelProcesses:
		p, ok := m.selectedProcess()
		if !ok {
			return ""
		}
		parts := []string{p.SessionID, p.Status.String(), p.Cwd}
		if len(p.AddDirs) > 0 {
			parts = append(parts, "add-dirs "+strings.Join(p.AddDirs, ", "))
		}
		return muted(strings.Join(parts, " · "))
	case panelOrphans:
		o, ok := m.selectedOrphan()
		if !ok {
			return ""
		}
		st := lipgloss.NewStyle().Foreground(markerColor(o.MarkerStatus())).Render(markerLabel(o))
		cwd := o.Cwd
		if cwd == "" {
			cwd = "cwd unknown"
		}
		return muted(o.SessionID+" · ") + st + muted(" · "+cwd)
	}
	return ""
}

func markerLabel(o adoption.OrphanSession) string {
	if s := strings.TrimSpace(o.Status); s != "" {
		return s
	}
	return o.MarkerStatus().String()
}

func (m model) inputLine() string {
	switch {
	case m.confirmKillAll:
		warn := lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Red)
		return warn.Render(fmt.Sprintf("%s terminate %d managed process%s? ", IconWarn(), len(m.procs), plural(len(m.procs), "", "es"))) +
			MutedStyle().Render("y / n")
	case m.prompting:
		return m.prompt.View()
	case m.filtering:
		return m.filter.View()
	case m.filter.Value() != "":
		return MutedStyle().Render(IconFilter() + " " + m.filter.Value() + "  (/ to edit)")
	}
	return MutedStyle().Render("enter open · n new · e edit · x kill · K kill all · c cleanup · / filter · ? help · q quit")
}

func (m model) statusBar(width int, mode string, key lipgloss.Color) string {
	left := []string{mode}
	switch {
	case m.statusActive():
		text := m.status
		if m.statusErr {
			text = IconWarn() + " " + text
		}
		left = append(left, text)
	default:
		now := m.now
		if now.IsZero() {
			now = time.Now()
		}
		left = append(left, now.Format("15:04:05"))
	}
	right := []string{
		fmt.Sprintf("%d managed", len(m.procs)),
		fmt.Sprintf("%d orphan%s", len(m.orphans), plural(len(m.orphans), "", "s")),
		appver.AppVersion,
	}
	if m.git.InRepo && m.git.Branch != "" {
		br := m.git.Branch
		if m.git.Dirty {
			br += "*"
		}
		right = append(right, br)
	}
	return renderStatusBar(width, key, left, right)
}

func (m model) helpView() string {
	w, _ := m.size()
	b := &strings.Builder{}
	b.WriteString(m.header(w))
	b.WriteString("\n")
	b.WriteString(m.help.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar(w, "HELP", Vitesse.Blue))
	return b.String()
}

func (m model) terminalView() string {
	w, _ := m.size()
	snap := m.term.Snapshot()

	state := m.term.State()
	stateStyle := lipgloss.NewStyle().Foreground(Vitesse.Primary)
	if state != terminal.StateRunning {
		stateStyle = stateStyle.Foreground(Vitesse.Red)
	}
	title := AccentBold().Render(IconTerminal()+" "+m.termTitle) + "  " +
		stateStyle.Render(state.String())
	if pid := m.term.PID(); pid > 0 {
		title += MutedStyle().Render(fmt.Sprintf("  pid %d", pid))
	}

	b := &strings.Builder{}
	b.WriteString(fitWidth(" "+title, w))
	b.WriteString("\n")
	for _, ln := range renderSnapshot(snap, !m.termEnded) {
		b.WriteString(fitWidth(ln, w))
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar(w, "TERM", Vitesse.Cyan))
	return b.String()
}

// since formats the age of t relative to now in its largest unit.
func since(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", max(int(d.Seconds()), 0))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
