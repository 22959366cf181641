// Package proctable takes snapshots of the OS process table.
package proctable

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Process is one entry of a process table snapshot.
type Process struct {
	PID     int
	Name    string
	Cmdline string
}

// Lister produces a process table snapshot.
type Lister interface {
	Processes() ([]Process, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func() ([]Process, error)

func (f ListerFunc) Processes() ([]Process, error) { return f() }

// System lists the processes of the running OS.
var System Lister = ListerFunc(Snapshot)

// PIDSet indexes a snapshot by pid.
func PIDSet(procs []Process) map[int]struct{} {
	set := make(map[int]struct{}, len(procs))
	for _, p := range procs {
		set[p.PID] = struct{}{}
	}
	return set
}

// Matching keeps processes whose name or command line contains needle.
func Matching(procs []Process, needle string) []Process {
	var out []Process
	for _, p := range procs {
		if strings.Contains(p.Name, needle) || strings.Contains(p.Cmdline, needle) {
			out = append(out, p)
		}
	}
	return out
}

const psTimeout = 5 * time.Second

// snapshotPS parses `ps -axww -o pid=,args=`. The name is the base of the
// first argument.
func snapshotPS() ([]Process, error) {
	ctx, cancel := context.WithTimeout(context.Background(), psTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "ps", "-axww", "-o", "pid=,args=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	return parsePS(out), nil
}

func parsePS(out []byte) []Process {
	var procs []Process
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		pidStr, args, _ := strings.Cut(line, " ")
		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			continue
		}
		args = strings.TrimSpace(args)
		name := args
		if first, _, ok := strings.Cut(args, " "); ok {
			name = first
		}
		procs = append(procs, Process{PID: pid, Name: filepath.Base(name), Cmdline: args})
	}
	return procs
}
