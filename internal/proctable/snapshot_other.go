//go:build !linux && !windows

package proctable

// Snapshot lists processes through ps.
func Snapshot() ([]Process, error) { return snapshotPS() }
