package proctable

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strconv"
)

// Snapshot lists processes through tasklist. Command lines are not
// available there, so Cmdline repeats the image name.
func Snapshot() ([]Process, error) {
	ctx, cancel := context.WithTimeout(context.Background(), psTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "tasklist", "/fo", "csv", "/nh").Output()
	if err != nil {
		return nil, fmt.Errorf("tasklist: %w", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tasklist: %w", err)
	}
	var procs []Process
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		pid, err := strconv.Atoi(r[1])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: r[0], Cmdline: r[0]})
	}
	return procs, nil
}

// Alive reports whether pid appears in a fresh snapshot.
func Alive(pid int) bool {
	procs, err := Snapshot()
	if err != nil {
		return false
	}
	_, ok := PIDSet(procs)[pid]
	return ok
}
