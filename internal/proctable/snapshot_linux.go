package proctable

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const procRoot = "/proc"

// Snapshot reads /proc once. Processes that exit while being read are
// skipped. Without a usable /proc it falls back to ps.
func Snapshot() ([]Process, error) {
	entries, err := os.ReadDir(procRoot)
	if err != nil {
		return snapshotPS()
	}
	return readProc(procRoot, entries), nil
}

func readProc(root string, entries []os.DirEntry) []Process {
	var procs []Process
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if zombie(dir) {
			continue
		}
		comm, err := os.ReadFile(filepath.Join(dir, "comm"))
		if err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, "cmdline"))
		if err != nil {
			continue
		}
		cmdline := strings.TrimSpace(strings.ReplaceAll(string(raw), "\x00", " "))
		procs = append(procs, Process{
			PID:     pid,
			Name:    strings.TrimSpace(string(comm)),
			Cmdline: cmdline,
		})
	}
	return procs
}

// zombie reports whether the process has exited but was not reaped yet.
// Children launched fire-and-forget stay in that state until the launcher
// exits, and must not count as alive.
func zombie(dir string) bool {
	b, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return false
	}
	i := strings.LastIndexByte(string(b), ')')
	if i < 0 || i+2 >= len(b) {
		return false
	}
	return b[i+2] == 'Z'
}

// Cwd returns the working directory of pid.
func Cwd(pid int) (string, error) {
	return os.Readlink(filepath.Join(procRoot, strconv.Itoa(pid), "cwd"))
}
