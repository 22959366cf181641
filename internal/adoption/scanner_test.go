package adoption

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sessiondeck/internal/proctable"
	"sessiondeck/internal/testutil"
)

func newTestScanner(dir string, procs ...proctable.Process) *Scanner {
	s := NewScanner(dir, ".state", "claude")
	s.Lister = testutil.FakeLister(procs...)
	s.CwdOf = nil
	return s
}

func TestDiscoverMatchesSessionID(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "abc.state", "active\n")
	s := newTestScanner(dir,
		proctable.Process{PID: 10, Name: "bash", Cmdline: "bash -c echo"},
		proctable.Process{PID: 42, Name: "claude", Cmdline: "claude --add-dir /x --session-id abc --verbose"},
	)
	got, err := s.Discover(map[int]struct{}{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 || got[0].SessionID != "abc" || got[0].PID != 42 || got[0].Status != "active" {
		t.Fatalf("got %+v", got)
	}

	got, err = s.Discover(map[int]struct{}{42: {}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("registered pid must be skipped, got %+v", got)
	}
}

func TestDiscoverFiltersStatuses(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "w.state", "working")
	testutil.WriteFile(t, dir, "i.state", " idle ")
	testutil.WriteFile(t, dir, "done.state", "completed")
	testutil.WriteFile(t, dir, "wait.state", "waiting")
	testutil.WriteFile(t, dir, "notes.txt", "active")
	got, err := newTestScanner(dir).Discover(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].SessionID != "i" || got[1].SessionID != "w" {
		t.Fatalf("got %+v", got)
	}
	if got[0].PID != 0 || got[0].Cwd != "" || got[0].Status != "idle" {
		t.Fatalf("unmatched marker must have no pid/cwd: %+v", got[0])
	}
}

func TestDiscoverExtractsCwdFromResumeCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "s-1.state", "working")
	s := newTestScanner(dir, proctable.Process{
		PID:     7,
		Name:    "bash",
		Cmdline: "bash -c cd '/home/me/my project' 2>/dev/null || cd ~; claude --resume 's-1' --dangerously-skip-permissions",
	})
	got, err := s.Discover(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PID != 7 || got[0].Cwd != "/home/me/my project" {
		t.Fatalf("got %+v", got)
	}
}

func TestDiscoverFallsBackToCwdLookup(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "x.state", "active")
	s := newTestScanner(dir, proctable.Process{PID: 9, Name: "claude", Cmdline: "claude --resume=x"})
	s.CwdOf = func(pid int) (string, error) {
		if pid != 9 {
			t.Fatalf("CwdOf(%d)", pid)
		}
		return "/from/proc", nil
	}
	got, _ := s.Discover(nil)
	if len(got) != 1 || got[0].Cwd != "/from/proc" {
		t.Fatalf("got %+v", got)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	s := newTestScanner(filepath.Join(t.TempDir(), "does-not-exist"))
	s.Lister = proctable.ListerFunc(func() ([]proctable.Process, error) {
		t.Fatalf("process table must not be read without markers")
		return nil, nil
	})
	got, err := s.Discover(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestDiscoverProcessTableError(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.state", "active")
	s := newTestScanner(dir)
	s.Lister = proctable.ListerFunc(func() ([]proctable.Process, error) { return nil, errors.New("ps missing") })
	if _, err := s.Discover(nil); !errors.Is(err, ErrProcessTable) {
		t.Fatalf("err = %v", err)
	}
}

func TestActiveSessionIDs(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b.state", "active")
	testutil.WriteFile(t, dir, "a.state", "working")
	testutil.WriteFile(t, dir, "c.state", "garbage")
	ids := newTestScanner(dir).ActiveSessionIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestMentionsSession(t *testing.T) {
	cases := []struct {
		cmd  string
		want bool
	}{
		{"claude --session-id abc", true},
		{"claude --session-id=abc --x", true},
		{"claude --resume abc;", true},
		{"claude --resume=abc", true},
		{"bash -c claude --resume 'abc' --flag", true},
		{"claude --session-id abcdef", false},
		{"claude --session abc", false},
		{"claude abc", false},
	}
	for _, c := range cases {
		if got := MentionsSession(c.cmd, "abc"); got != c.want {
			t.Fatalf("MentionsSession(%q) = %v", c.cmd, got)
		}
	}
	if MentionsSession("claude --resume ", "") {
		t.Fatalf("empty id must never match")
	}
}

func TestExtractCwd(t *testing.T) {
	cases := map[string]string{
		"bash -c cd '/a/b' 2>/dev/null || cd ~; claude": "/a/b",
		"bash -c cd /plain/path; claude --resume x":     "/plain/path",
		"bash -c cd /tabbed\tclaude":                     "/tabbed",
		`bash -c cd '/it'\''s here' && claude`:           "/it's here",
		"sh -c 'cd /quoted/outer && claude'":             "/quoted/outer",
		"claude --resume x":                              "",
		"bash -c cd ~; claude":                           "",
		"abcd /not/a/cd":                                 "",
	}
	for in, want := range cases {
		if got := ExtractCwd(in); got != want {
			t.Fatalf("ExtractCwd(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseMarkerStatus(t *testing.T) {
	if ParseMarkerStatus(" Working\n") != MarkerWorking || !MarkerIdle.Alive() || MarkerWaiting.Alive() {
		t.Fatalf("marker status parsing broken")
	}
	if ParseMarkerStatus("completed") != MarkerUnknown || MarkerUnknown.String() != "unknown" {
		t.Fatalf("unknown fallback broken")
	}
}

func TestWatchSignalsOnMarkerChange(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, dir, ".state")
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	testutil.WriteFile(t, dir, "ignored.txt", "x")
	testutil.WriteFile(t, dir, "s.state", "active")
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("no signal after marker write")
	}
	cancel()
	for range ch {
	}
}
