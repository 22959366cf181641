//go:build !windows

package proctable

import (
	"errors"
	"os"
	"syscall"
)

// Alive reports whether pid exists. A permission error still means the
// process is there.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
