package proctable

import (
	"os"
	"path/filepath"
	"testing"
)

func fakeProc(t *testing.T, root, pid, comm, cmdline, stat string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"comm": comm, "cmdline": cmdline, "stat": stat} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReadProcSkipsZombiesAndNonPIDs(t *testing.T) {
	root := t.TempDir()
	fakeProc(t, root, "12", "claude\n", "claude\x00--resume\x00abc\x00", "12 (claude) S 1 12 12 0")
	fakeProc(t, root, "13", "claude\n", "", "13 (cla) de) Z 1 13 13 0")
	if err := os.MkdirAll(filepath.Join(root, "self"), 0o755); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	procs := readProc(root, entries)
	if len(procs) != 1 {
		t.Fatalf("procs = %+v", procs)
	}
	if p := procs[0]; p.PID != 12 || p.Name != "claude" || p.Cmdline != "claude --resume abc" {
		t.Fatalf("proc = %+v", p)
	}
}
