// Package adoption finds assistant sessions that are still running but are
// not tracked in the process registry, so the dashboard can re-attach.
//
// Matching is heuristic: session ids and working directories are read out
// of process command lines.
package adoption

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sessiondeck/internal/proctable"
	"sessiondeck/internal/system"
)

// ErrProcessTable is returned when the OS process table cannot be read.
var ErrProcessTable = errors.New("process table unavailable")

// OrphanSession is a live session missing from the registry.
type OrphanSession struct {
	SessionID string `json:"session_id"`
	// PID is 0 when no matching process was found.
	PID int `json:"pid,omitempty"`
	// Cwd is best effort and may be empty.
	Cwd string `json:"cwd,omitempty"`
	// Status is the marker content, verbatim.
	Status string `json:"status"`
}

// MarkerStatus parses Status.
func (o OrphanSession) MarkerStatus() MarkerStatus { return ParseMarkerStatus(o.Status) }

// Marker is one session-state file.
type Marker struct {
	SessionID string
	Status    string
}

// Scanner discovers orphan sessions. The zero value is not usable; build
// one with NewScanner.
type Scanner struct {
	// StateDir holds <session_id><Ext> marker files.
	StateDir string
	Ext      string
	// ProcessName filters the process table (substring of name or cmdline).
	ProcessName string
	Lister      proctable.Lister
	// CwdOf is consulted when the command line carries no cd target.
	CwdOf func(pid int) (string, error)
}

// NewScanner returns a Scanner reading the OS process table.
func NewScanner(stateDir, ext, processName string) *Scanner {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Scanner{
		StateDir:    stateDir,
		Ext:         ext,
		ProcessName: processName,
		Lister:      proctable.System,
		CwdOf:       proctable.Cwd,
	}
}

// Markers lists every marker file, sorted by session id. A missing or
// unreadable directory yields no markers.
func (s *Scanner) Markers() []Marker {
	if s.StateDir == "" {
		return nil
	}
	entries, err := os.ReadDir(s.StateDir)
	if err != nil {
		if !os.IsNotExist(err) {
			system.Logger.Debug("session-state dir unreadable", "dir", s.StateDir, "err", err)
		}
		return nil
	}
	var out []Marker
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, s.Ext) {
			continue
		}
		id := strings.TrimSuffix(name, s.Ext)
		if id == "" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.StateDir, name))
		if err != nil {
			// removed between ReadDir and ReadFile
			continue
		}
		out = append(out, Marker{SessionID: id, Status: strings.TrimSpace(string(b))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// ActiveSessionIDs returns the ids of markers in an alive state.
func (s *Scanner) ActiveSessionIDs() []string {
	var ids []string
	for _, m := range s.Markers() {
		if ParseMarkerStatus(m.Status).Alive() {
			ids = append(ids, m.SessionID)
		}
	}
	return ids
}

// Discover returns alive sessions whose process is not in registered.
// Sessions without a matching process are still reported, without pid.
func (s *Scanner) Discover(registered map[int]struct{}) ([]OrphanSession, error) {
	var alive []Marker
	for _, m := range s.Markers() {
		if ParseMarkerStatus(m.Status).Alive() {
			alive = append(alive, m)
		}
	}
	if len(alive) == 0 {
		return nil, nil
	}

	procs, err := s.Lister.Processes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessTable, err)
	}
	candidates := proctable.Matching(procs, s.ProcessName)

	var out []OrphanSession
	for _, m := range alive {
		o := OrphanSession{SessionID: m.SessionID, Status: m.Status}
		if p, ok := findSession(candidates, m.SessionID); ok {
			if _, known := registered[p.PID]; known {
				continue
			}
			o.PID = p.PID
			o.Cwd = ExtractCwd(p.Cmdline)
			if o.Cwd == "" && s.CwdOf != nil {
				if cwd, err := s.CwdOf(p.PID); err == nil {
					o.Cwd = cwd
				}
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func findSession(procs []proctable.Process, id string) (proctable.Process, bool) {
	for _, p := range procs {
		if MentionsSession(p.Cmdline, id) {
			return p, true
		}
	}
	return proctable.Process{}, false
}
