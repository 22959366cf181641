//go:build !linux

package proctable

import "errors"

// Cwd is only available where /proc exposes it.
func Cwd(pid int) (string, error) { return "", errors.New("cwd lookup not supported on this platform") }
