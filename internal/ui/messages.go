package ui

import (
	"time"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/headless"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/system"
	"sessiondeck/internal/terminal"
)

// periodic registry/orphan refresh
type tickMsg time.Time

type refreshMsg struct {
	procs   []registry.ManagedProcess
	orphans []adoption.OrphanSession
	removed int
	// manual is set for an explicit cleanup request
	manual bool
	err    error
}

// a session-state marker changed on disk
type markersChangedMsg struct{}

type launchedMsg struct {
	preset string
	count  int
	err    error
}

type killedMsg struct {
	pid  int
	dead bool
	err  error
}

type killAllMsg struct {
	report headless.KillReport
	err    error
}

// repaint poll while a terminal is open
type termFrameMsg struct{ gen int }

type termExitedMsg struct{ s *terminal.Session }

// git status of the dashboard's working directory
type gitMsg system.GitInfo
