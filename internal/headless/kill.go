package headless

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"sessiondeck/internal/proctable"
	"sessiondeck/internal/system"
)

// ErrNotManaged is returned by Kill for a pid the registry does not know.
var ErrNotManaged = errors.New("process not managed by sessiondeck")

var (
	isAlive   = proctable.Alive
	terminate = sendTermSignal
)

// KillReport summarises a KillAll run.
type KillReport struct {
	Killed      []int         `json:"killed"`
	AlreadyDead []int         `json:"already_dead"`
	Failed      map[int]error `json:"-"`
}

// Total is the number of records handled.
func (r KillReport) Total() int { return len(r.Killed) + len(r.AlreadyDead) + len(r.Failed) }

// Kill terminates one registered process and drops its record. A pid that
// is already gone is only unregistered; dead reports that case.
func Kill(reg Store, pid int) (dead bool, err error) {
	if _, ok := reg.FindByPID(pid); !ok {
		return false, fmt.Errorf("%w: pid %d", ErrNotManaged, pid)
	}
	if !isAlive(pid) {
		return true, reg.Unregister(pid)
	}
	if err := terminate(pid); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return true, reg.Unregister(pid)
		}
		return false, fmt.Errorf("terminate %d: %w", pid, err)
	}
	system.Logger.Info("terminated managed process", "pid", pid)
	return false, reg.Unregister(pid)
}

// KillAll terminates every registered process. Each record is looked up
// again before signalling so a record removed concurrently is skipped.
func KillAll(reg Store) (KillReport, error) {
	rep := KillReport{Failed: map[int]error{}}
	var errs []error
	for _, p := range reg.All() {
		dead, err := Kill(reg, p.PID)
		switch {
		case errors.Is(err, ErrNotManaged):
			continue
		case err != nil && !dead:
			rep.Failed[p.PID] = err
			errs = append(errs, err)
			continue
		case err != nil:
			errs = append(errs, err)
		}
		if dead {
			rep.AlreadyDead = append(rep.AlreadyDead, p.PID)
		} else {
			rep.Killed = append(rep.Killed, p.PID)
		}
	}
	sort.Ints(rep.Killed)
	sort.Ints(rep.AlreadyDead)
	return rep, errors.Join(errs...)
}
