//go:build !windows

package headless

import (
	"os"
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the child in its own session, away from the
// dashboard's terminal and signals.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

func sendTermSignal(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Signal(syscall.SIGTERM)
}
