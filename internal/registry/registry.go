// Package registry keeps the durable table of processes sessiondeck has
// launched outside the dashboard, shared by every running instance.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"sessiondeck/internal/proctable"
	"sessiondeck/internal/store"
	"sessiondeck/internal/system"
)

// ErrPersist wraps failures to write the registry file.
var ErrPersist = errors.New("registry persistence failed")

// ManagedProcess is one launched long-lived process.
type ManagedProcess struct {
	PID           int       `json:"pid" jsonschema:"description=OS process id; unique among retained records"`
	SessionID     string    `json:"session_id" jsonschema:"description=Assistant session id"`
	PresetName    string    `json:"preset_name,omitempty" jsonschema:"description=Preset the process was launched from"`
	InstanceIndex int       `json:"instance_index" jsonschema:"description=Ordinal among instances of the same preset"`
	Cwd           string    `json:"cwd"`
	AddDirs       []string  `json:"add_dirs"`
	StartedAt     time.Time `json:"started_at"`
	Status        Status    `json:"status"`

	// rawStatus keeps an unrecognised stored status so it is written back
	// unchanged.
	rawStatus string
}

type managedAlias ManagedProcess

type managedJSON struct {
	managedAlias
	Status string `json:"status"`
}

func (p ManagedProcess) MarshalJSON() ([]byte, error) {
	status := p.Status.String()
	if p.Status == StatusUnknown && p.rawStatus != "" {
		status = p.rawStatus
	}
	return json.Marshal(managedJSON{managedAlias: managedAlias(p), Status: status})
}

func (p *ManagedProcess) UnmarshalJSON(b []byte) error {
	var aux managedJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = ManagedProcess(aux.managedAlias)
	p.Status = ParseStatus(aux.Status)
	if p.Status == StatusUnknown {
		p.rawStatus = aux.Status
	}
	return nil
}

// File is the on-disk document.
type File struct {
	Processes []ManagedProcess `json:"processes"`
}

// Registry is the in-memory view of the registry file. Every mutation
// re-reads the file under an advisory lock, applies the change and writes
// it back atomically, so concurrent instances do not lose updates.
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	path    string
	procs   []ManagedProcess
	lister  proctable.Lister
	now     func() time.Time
	warning string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLister replaces the OS process table used by CleanupDead.
func WithLister(l proctable.Lister) Option { return func(r *Registry) { r.lister = l } }

// WithClock replaces time.Now for StartedAt stamps.
func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// Load reads the registry at path. A missing file gives an empty table and
// creates the parent directory. An unparsable file is moved aside and an
// unreadable one is left alone; either way the table starts empty with a
// warning. The returned registry is usable even when err is non-nil.
func Load(path string, opts ...Option) (*Registry, error) {
	r := &Registry{path: path, lister: proctable.System, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return r, fmt.Errorf("create registry dir: %w", err)
	}
	procs, corrupt, err := r.read()
	switch {
	case corrupt:
		backup := path + ".corrupt-" + r.now().Format("20060102T150405")
		if rerr := os.Rename(path, backup); rerr != nil {
			backup = ""
			system.Logger.Warn("could not move corrupt registry aside", "path", path, "err", rerr)
		}
		system.Logger.Warn("process registry unreadable; starting empty", "path", path, "backup", backup, "err", err)
		r.warning = "process registry was unreadable and has been reset"
		if backup != "" {
			r.warning += " (saved as " + filepath.Base(backup) + ")"
		}
	case err != nil:
		system.Logger.Warn("process registry unreadable; starting empty", "path", path, "err", err)
		r.warning = "process registry could not be read; starting empty: " + err.Error()
	default:
		r.procs = procs
	}
	return r, nil
}

// read returns the file contents. corrupt is set when the file exists but
// does not decode.
func (r *Registry) read() (procs []ManagedProcess, corrupt bool, err error) {
	var f File
	found, err := store.ReadJSON(r.path, &f)
	if err != nil {
		return nil, found, err
	}
	return f.Processes, false, nil
}

func (r *Registry) lock() *flock.Flock { return flock.New(r.path + ".lock") }

// mutate runs the load-mutate-persist cycle. fn receives a private copy of
// the table and reports whether it changed anything.
func (r *Registry) mutate(fn func([]ManagedProcess) ([]ManagedProcess, bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lk := r.lock()
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %w", ErrPersist, lk.Path(), err)
	}
	defer func() { _ = lk.Unlock() }()

	if procs, _, err := r.read(); err == nil {
		r.procs = procs
	}
	next, changed := fn(slices.Clone(r.procs))
	if !changed {
		return nil
	}
	if next == nil {
		next = []ManagedProcess{}
	}
	if err := store.WriteJSONAtomic(r.path, File{Processes: next}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	r.procs = next
	return nil
}

// Reload refreshes the in-memory table from disk. A corrupt file leaves
// the current table untouched.
func (r *Registry) Reload() error {
	lk := r.lock()
	if err := lk.RLock(); err != nil {
		return fmt.Errorf("lock %s: %w", lk.Path(), err)
	}
	defer func() { _ = lk.Unlock() }()
	procs, _, err := r.read()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.procs = procs
	r.mu.Unlock()
	return nil
}

// Register records a freshly launched process as running. An existing
// record with the same pid is replaced, since the OS may reuse pids.
func (r *Registry) Register(pid int, sessionID, presetName string, instanceIndex int, cwd string, addDirs []string) error {
	if addDirs == nil {
		addDirs = []string{}
	}
	rec := ManagedProcess{
		PID:           pid,
		SessionID:     sessionID,
		PresetName:    presetName,
		InstanceIndex: instanceIndex,
		Cwd:           cwd,
		AddDirs:       slices.Clone(addDirs),
		StartedAt:     r.now().UTC(),
		Status:        StatusRunning,
	}
	return r.mutate(func(procs []ManagedProcess) ([]ManagedProcess, bool) {
		procs = slices.DeleteFunc(procs, func(p ManagedProcess) bool { return p.PID == pid })
		return append(procs, rec), true
	})
}

// Unregister drops the record for pid, if any.
func (r *Registry) Unregister(pid int) error {
	return r.mutate(func(procs []ManagedProcess) ([]ManagedProcess, bool) {
		n := len(procs)
		procs = slices.DeleteFunc(procs, func(p ManagedProcess) bool { return p.PID == pid })
		return procs, len(procs) != n
	})
}

// UpdateStatus sets the status of pid. Unknown pids are ignored.
func (r *Registry) UpdateStatus(pid int, status Status) error {
	return r.mutate(func(procs []ManagedProcess) ([]ManagedProcess, bool) {
		for i := range procs {
			if procs[i].PID == pid {
				if procs[i].Status == status {
					return procs, false
				}
				procs[i].Status = status
				return procs, true
			}
		}
		return procs, false
	})
}

// CleanupDead removes every record whose pid is absent from a single
// snapshot of the process table and returns the removed records. The
// snapshot is taken while the file lock is held, so a process registered
// by another caller is either in the table read or in the snapshot.
func (r *Registry) CleanupDead() ([]ManagedProcess, error) {
	var removed []ManagedProcess
	var snapErr error
	err := r.mutate(func(cur []ManagedProcess) ([]ManagedProcess, bool) {
		procs, err := r.lister.Processes()
		if err != nil {
			snapErr = fmt.Errorf("snapshot process table: %w", err)
			return cur, false
		}
		alive := proctable.PIDSet(procs)
		kept := cur[:0]
		for _, p := range cur {
			if _, ok := alive[p.PID]; ok {
				kept = append(kept, p)
			} else {
				removed = append(removed, p)
			}
		}
		return kept, len(removed) > 0
	})
	if snapErr != nil {
		return nil, snapErr
	}
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// FindByPID returns the record for pid.
func (r *Registry) FindByPID(pid int) (ManagedProcess, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.procs {
		if p.PID == pid {
			return p, true
		}
	}
	return ManagedProcess{}, false
}

// FindBySession returns the first record for sessionID.
func (r *Registry) FindBySession(sessionID string) (ManagedProcess, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.procs {
		if p.SessionID == sessionID {
			return p, true
		}
	}
	return ManagedProcess{}, false
}

// All returns a copy of the table in insertion order.
func (r *Registry) All() []ManagedProcess {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.procs)
}

// PIDs returns the set of registered pids.
func (r *Registry) PIDs() map[int]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[int]struct{}, len(r.procs))
	for _, p := range r.procs {
		set[p.PID] = struct{}{}
	}
	return set
}

// Path is the backing file.
func (r *Registry) Path() string { return r.path }

// TakeWarning returns the pending load warning once.
func (r *Registry) TakeWarning() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.warning
	r.warning = ""
	return w
}
