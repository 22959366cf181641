package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sessiondeck/internal/headless"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/system"
	"sessiondeck/internal/terminal"
)

const termFrameInterval = 33 * time.Millisecond

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refreshCmd reloads the registry, drops dead records and rescans for
// orphans. Each step logs and continues on failure; the first error is
// reported.
func refreshCmd(d Deps, manual bool) tea.Cmd {
	return func() tea.Msg {
		msg := refreshMsg{manual: manual}
		var errs []error
		if d.Registry != nil {
			if err := d.Registry.Reload(); err != nil {
				system.Logger.Debug("registry reload failed", "err", err)
			}
			removed, err := d.Registry.CleanupDead()
			if err != nil {
				errs = append(errs, err)
			}
			msg.removed = len(removed)
			msg.procs = d.Registry.All()
		}
		if d.Scanner != nil {
			var registered map[int]struct{}
			if d.Registry != nil {
				registered = d.Registry.PIDs()
			}
			orphans, err := d.Scanner.Discover(registered)
			if err != nil {
				errs = append(errs, err)
			}
			msg.orphans = orphans
		}
		if len(errs) > 0 {
			msg.err = errs[0]
			system.Logger.Warn("refresh failed", "err", errors.Join(errs...))
		}
		return msg
	}
}

// watchCmd waits for the next marker change notification.
func watchCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return markersChangedMsg{}
	}
}

func launchCmd(l *headless.Launcher, p presets.Preset) tea.Cmd {
	return func() tea.Msg {
		insts, err := l.LaunchPreset(p)
		return launchedMsg{preset: p.Name, count: len(insts), err: err}
	}
}

func killCmd(reg headless.Store, pid int) tea.Cmd {
	return func() tea.Msg {
		dead, err := headless.Kill(reg, pid)
		return killedMsg{pid: pid, dead: dead, err: err}
	}
}

func killAllCmd(reg headless.Store) tea.Cmd {
	return func() tea.Msg {
		rep, err := headless.KillAll(reg)
		return killAllMsg{report: rep, err: err}
	}
}

func termFrameCmd(gen int) tea.Cmd {
	return tea.Tick(termFrameInterval, func(time.Time) tea.Msg { return termFrameMsg{gen: gen} })
}

func termWaitCmd(s *terminal.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Done()
		return termExitedMsg{s: s}
	}
}

func gitCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		return gitMsg(system.GetGitInfo(context.Background(), dir))
	}
}
