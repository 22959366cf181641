package proctable

import (
	"os"
	"testing"
)

func TestParsePS(t *testing.T) {
	out := []byte("    1 /sbin/launchd\n  420 /usr/local/bin/claude --resume abc --dangerously-skip-permissions\n garbage line\n\n 77 bash\n")
	procs := parsePS(out)
	if len(procs) != 3 {
		t.Fatalf("got %d procs: %+v", len(procs), procs)
	}
	if procs[1].PID != 420 || procs[1].Name != "claude" {
		t.Fatalf("unexpected entry: %+v", procs[1])
	}
	if procs[1].Cmdline != "/usr/local/bin/claude --resume abc --dangerously-skip-permissions" {
		t.Fatalf("cmdline = %q", procs[1].Cmdline)
	}
	if procs[2].Name != "bash" || procs[2].Cmdline != "bash" {
		t.Fatalf("unexpected entry: %+v", procs[2])
	}
}

func TestMatchingAndPIDSet(t *testing.T) {
	procs := []Process{
		{PID: 1, Name: "init", Cmdline: "/sbin/init"},
		{PID: 2, Name: "node", Cmdline: "node /opt/claude/cli.js --session-id x"},
		{PID: 3, Name: "claude", Cmdline: "claude"},
	}
	m := Matching(procs, "claude")
	if len(m) != 2 || m[0].PID != 2 || m[1].PID != 3 {
		t.Fatalf("Matching = %+v", m)
	}
	set := PIDSet(procs)
	if _, ok := set[3]; !ok || len(set) != 3 {
		t.Fatalf("PIDSet = %v", set)
	}
}

func TestSnapshotContainsSelf(t *testing.T) {
	procs, err := Snapshot()
	if err != nil {
		t.Skipf("process table unavailable: %v", err)
	}
	if _, ok := PIDSet(procs)[os.Getpid()]; !ok {
		t.Fatalf("own pid %d missing from snapshot of %d processes", os.Getpid(), len(procs))
	}
	if !Alive(os.Getpid()) {
		t.Fatalf("Alive(self) = false")
	}
	if Alive(1 << 30) {
		t.Fatalf("Alive(huge pid) = true")
	}
}
