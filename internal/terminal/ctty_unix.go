//go:build !windows

package terminal

import (
	"os/exec"
	"syscall"
)

// setControllingTTY starts the child as a session leader with the PTY
// slave (its stdin) as controlling terminal, so ^C from the master
// becomes SIGINT for the foreground job.
func setControllingTTY(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true
	cmd.SysProcAttr.Ctty = 0
}
