// Package headless launches assistant instances without a terminal and
// records them in the process registry.
package headless

import (
	"errors"
	"fmt"
	"os/exec"
	"slices"

	"github.com/google/uuid"

	"sessiondeck/internal/config"
	"sessiondeck/internal/presets"
	"sessiondeck/internal/registry"
	"sessiondeck/internal/shellsafe"
	"sessiondeck/internal/system"
)

// ErrSpawn wraps failures to start the assistant.
var ErrSpawn = errors.New("headless spawn failed")

// Store is the part of the registry the launcher needs.
type Store interface {
	Register(pid int, sessionID, presetName string, instanceIndex int, cwd string, addDirs []string) error
	Unregister(pid int) error
	FindByPID(pid int) (registry.ManagedProcess, bool)
	All() []registry.ManagedProcess
}

// Instance is one launched process.
type Instance struct {
	PID        int
	SessionID  string
	PresetName string
	Index      int
	Cwd        string
	AddDirs    []string
}

// BuildArgs returns the assistant arguments: one --add-dir per directory,
// the extra arguments verbatim, then --session-id.
func BuildArgs(addDirs, extraArgs []string, sessionID string) []string {
	args := make([]string, 0, 2*len(addDirs)+len(extraArgs)+2)
	for _, d := range addDirs {
		args = append(args, "--add-dir", d)
	}
	args = append(args, extraArgs...)
	return append(args, "--session-id", sessionID)
}

// Launcher starts headless instances.
type Launcher struct {
	Assistant string
	Registry  Store

	start func(*exec.Cmd) (int, error)
	newID func() string
}

// NewLauncher returns a Launcher running assistant and recording into reg.
func NewLauncher(assistant string, reg Store) *Launcher {
	if assistant == "" {
		assistant = config.DefaultAssistant
	}
	return &Launcher{
		Assistant: assistant,
		Registry:  reg,
		start:     startDetached,
		newID:     uuid.NewString,
	}
}

// startDetached starts cmd and reaps it in the background; nobody holds a
// handle to the child afterwards.
func startDetached(cmd *exec.Cmd) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// Spawn starts one instance in cwd with a fresh session id. Paths are
// validated before anything runs. Stdio is the null device and the child
// gets its own session, so it survives the dashboard.
func (l *Launcher) Spawn(cwd string, addDirs, extraArgs []string) (Instance, error) {
	if err := shellsafe.ValidatePath(cwd); err != nil {
		return Instance{}, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	for _, d := range addDirs {
		if err := shellsafe.ValidatePath(d); err != nil {
			return Instance{}, fmt.Errorf("%w: %w", ErrSpawn, err)
		}
	}
	id := l.newID()
	cmd := exec.Command(l.Assistant, BuildArgs(addDirs, extraArgs, id)...)
	cmd.Dir = cwd
	setSysProcAttr(cmd)

	pid, err := l.start(cmd)
	if err != nil {
		return Instance{}, fmt.Errorf("%w: %s: %w", ErrSpawn, l.Assistant, err)
	}
	system.Logger.Info("headless instance started", "pid", pid, "session", id, "cwd", cwd)
	return Instance{PID: pid, SessionID: id, Cwd: cwd, AddDirs: slices.Clone(addDirs)}, nil
}

// LaunchPreset starts p.Instances instances and registers each one. It
// stops at the first spawn failure and returns what was started so far.
// A registration failure is reported but does not stop the launch.
func (l *Launcher) LaunchPreset(p presets.Preset) ([]Instance, error) {
	if err := presets.Validate(p); err != nil {
		return nil, err
	}
	var (
		out  []Instance
		errs []error
	)
	for i := 0; i < p.Instances; i++ {
		inst, err := l.Spawn(p.Cwd, p.AddDirs, p.ExtraArgs)
		if err != nil {
			errs = append(errs, err)
			break
		}
		inst.PresetName = p.Name
		inst.Index = i
		if l.Registry != nil {
			if err := l.Registry.Register(inst.PID, inst.SessionID, p.Name, i, inst.Cwd, inst.AddDirs); err != nil {
				system.Logger.Warn("could not register headless instance", "pid", inst.PID, "err", err)
				errs = append(errs, err)
			}
		}
		out = append(out, inst)
	}
	return out, errors.Join(errs...)
}
