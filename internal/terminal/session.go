// Package terminal runs an assistant (or editor) inside a pseudo-terminal
// and keeps an emulated screen of its output for the dashboard to render.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/x/xpty"

	"sessiondeck/internal/system"
	"sessiondeck/internal/vterm"
)

const (
	readChunkSize     = 4096
	readerJoinTimeout = 2 * time.Second
	interruptByte     = 0x03
)

var (
	ErrAllocation     = errors.New("pty allocation failed")
	ErrSpawn          = errors.New("spawn failed")
	ErrIO             = errors.New("pty i/o failed")
	ErrAlreadySpawned = errors.New("session already spawned")
	ErrNotRunning     = errors.New("session not running")
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Session owns one PTY pair and the emulated screen fed from it. The child
// process is not owned: Close does not kill it and it may outlive the
// Session.
type Session struct {
	pty  xpty.Pty
	opts options

	// mu guards screen; the reader holds it only while applying a chunk.
	mu     sync.Mutex
	screen *vterm.Screen

	// wmu keeps writes from the caller and emulator replies in order.
	wmu sync.Mutex

	state   atomic.Int32
	running atomic.Bool
	spawned atomic.Bool
	pid     atomic.Int64
	seq     atomic.Uint64
	command atomic.Value

	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

// New allocates a PTY of cols x rows and a matching screen.
func New(cols, rows int, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	p, err := xpty.NewPty(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	s := &Session{
		pty:    p,
		opts:   o,
		screen: vterm.New(cols, rows, o.scrollback),
		done:   make(chan struct{}),
	}
	s.command.Store("")
	return s, nil
}

// Spawn starts name with args on the PTY slave and starts the reader.
// It returns once the OS has created the process.
func (s *Session) Spawn(name string, args ...string) error {
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return fmt.Errorf("%w (state %s)", ErrAlreadySpawned, s.State())
	}
	s.spawned.Store(true)

	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), s.opts.env...)
	if s.opts.dir != "" {
		cmd.Dir = s.opts.dir
	}
	setControllingTTY(cmd)
	if err := s.pty.Start(cmd); err != nil {
		s.state.Store(int32(StateStopped))
		close(s.done)
		return fmt.Errorf("%w: %s: %w", ErrSpawn, name, err)
	}
	// Only the child keeps the slave open, so reads see EOF once it exits.
	if sl, ok := s.pty.(interface{ Slave() *os.File }); ok && sl.Slave() != nil {
		_ = sl.Slave().Close()
	}
	if cmd.Process != nil {
		s.pid.Store(int64(cmd.Process.Pid))
		// reap in the background; the session never waits on the child
		go func() { _ = cmd.Wait() }()
	}
	s.command.Store(cmd.String())
	system.Logger.Debug("terminal spawned", "pid", s.PID(), "cmd", cmd.String())

	s.running.Store(true)
	go s.readLoop()
	return nil
}

func (s *Session) readLoop() {
	defer close(s.done)
	defer s.markStopped()

	buf := make([]byte, readChunkSize)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.screen.Process(buf[:n])
			replies := s.screen.TakeReplies()
			s.mu.Unlock()
			s.seq.Add(1)
			if len(replies) > 0 && s.running.Load() {
				_ = s.writeRaw(replies)
			}
		}
		if err != nil {
			system.Logger.Debug("terminal reader done", "pid", s.PID(), "err", err)
			return
		}
		if n == 0 || !s.running.Load() {
			return
		}
	}
}

func (s *Session) markStopped() {
	s.running.Store(false)
	s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped))
	s.seq.Add(1)
}

func (s *Session) writeRaw(p []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err := s.pty.Write(p)
	return err
}

// Write forwards input bytes to the child.
func (s *Session) Write(p []byte) error {
	if st := s.State(); st != StateRunning {
		return fmt.Errorf("%w (state %s)", ErrNotRunning, st)
	}
	if err := s.writeRaw(p); err != nil {
		return fmt.Errorf("%w: write: %w", ErrIO, err)
	}
	return nil
}

// Resize resizes the PTY and the screen.
func (s *Session) Resize(cols, rows int) error {
	if st := s.State(); st != StateRunning {
		return fmt.Errorf("%w (state %s)", ErrNotRunning, st)
	}
	if err := s.pty.Resize(cols, rows); err != nil {
		return fmt.Errorf("%w: resize: %w", ErrIO, err)
	}
	s.mu.Lock()
	s.screen.Resize(cols, rows)
	s.mu.Unlock()
	s.seq.Add(1)
	return nil
}

// Snapshot copies the current screen.
func (s *Session) Snapshot() vterm.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Snapshot()
}

// Scrollback copies the retained history lines.
func (s *Session) Scrollback() [][]vterm.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Scrollback()
}

// Version increases whenever the screen may have changed, so renderers
// can skip unchanged frames.
func (s *Session) Version() uint64 { return s.seq.Load() }

// Stop clears the running flag and sends an interrupt (^C) to the
// foreground process. Safe to call any number of times; a session that
// was never spawned is left untouched.
func (s *Session) Stop() {
	if s.State() == StateCreated {
		return
	}
	s.stopOnce.Do(func() {
		if s.running.Swap(false) {
			_ = s.writeRaw([]byte{interruptByte})
		}
		s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped))
	})
}

// Close stops the session, releases the PTY and waits briefly for the
// reader to exit.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.Stop()
		err = s.pty.Close()
		if m, ok := s.pty.(interface{ Master() *os.File }); ok && m.Master() != nil {
			_ = m.Master().Close()
		}
		if errors.Is(err, os.ErrClosed) {
			err = nil
		}
		s.state.Store(int32(StateDisposed))
		if !s.spawned.Load() {
			close(s.done)
			return
		}
		select {
		case <-s.done:
		case <-time.After(readerJoinTimeout):
			system.Logger.Warn("terminal reader still blocked after close", "pid", s.PID())
		}
	})
	return err
}

// Done is closed when the reader has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Running reports whether the reader is active and Stop was not called.
func (s *Session) Running() bool { return s.running.Load() }

// State returns the lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// PID of the spawned child, or 0.
func (s *Session) PID() int { return int(s.pid.Load()) }

// Command is the command line that was started.
func (s *Session) Command() string { return s.command.Load().(string) }
