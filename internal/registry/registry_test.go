package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"sessiondeck/internal/proctable"
)

func fixedLister(pids ...int) proctable.Lister {
	return proctable.ListerFunc(func() ([]proctable.Process, error) {
		out := make([]proctable.Process, 0, len(pids))
		for _, p := range pids {
			out = append(out, proctable.Process{PID: p, Name: "claude"})
		}
		return out, nil
	})
}

func regPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cache", "sessiondeck", "processes.json")
}

func TestLoadMissingCreatesParent(t *testing.T) {
	p := regPath(t)
	r, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(r.All()) != 0 {
		t.Fatalf("expected empty table, got %+v", r.All())
	}
	if fi, err := os.Stat(filepath.Dir(p)); err != nil || !fi.IsDir() {
		t.Fatalf("parent dir not created: %v", err)
	}
	if w := r.TakeWarning(); w != "" {
		t.Fatalf("unexpected warning %q", w)
	}
}

func TestLoadCorruptResetsAndKeepsBackup(t *testing.T) {
	p := regPath(t)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{\"processes\": [ oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(p)
	if err != nil {
		t.Fatalf("Load on corrupt file must not fail: %v", err)
	}
	if len(r.All()) != 0 {
		t.Fatalf("expected empty table")
	}
	w := r.TakeWarning()
	if !strings.Contains(w, "reset") {
		t.Fatalf("warning = %q", w)
	}
	if r.TakeWarning() != "" {
		t.Fatalf("warning must be delivered once")
	}
	matches, _ := filepath.Glob(p + ".corrupt-*")
	if len(matches) != 1 {
		t.Fatalf("backup files = %v", matches)
	}
	b, _ := os.ReadFile(matches[0])
	if string(b) != "{\"processes\": [ oops" {
		t.Fatalf("backup content = %q", b)
	}
}

func TestRegisterFind(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r, err := Load(regPath(t), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(100, "s1", "web", 0, "/src/web", []string{"/src/lib"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	byPID, ok := r.FindByPID(100)
	if !ok || byPID.Status != StatusRunning || byPID.SessionID != "s1" {
		t.Fatalf("FindByPID = %+v, %v", byPID, ok)
	}
	bySession, ok := r.FindBySession("s1")
	if !ok || bySession.PID != 100 || bySession.Status != StatusRunning {
		t.Fatalf("FindBySession = %+v, %v", bySession, ok)
	}
	if !bySession.StartedAt.Equal(now) {
		t.Fatalf("StartedAt = %v", bySession.StartedAt)
	}

	// same pid again replaces the stale record
	if err := r.Register(100, "s2", "", 1, "/other", nil); err != nil {
		t.Fatal(err)
	}
	all := r.All()
	if len(all) != 1 || all[0].SessionID != "s2" {
		t.Fatalf("pid reuse not handled: %+v", all)
	}
	if _, ok := r.FindBySession("s1"); ok {
		t.Fatalf("old session still present")
	}
}

func TestUnregister(t *testing.T) {
	r, _ := Load(regPath(t))
	_ = r.Register(1, "a", "", 0, "/", nil)
	_ = r.Register(2, "b", "", 0, "/", nil)
	if err := r.Unregister(1); err != nil {
		t.Fatal(err)
	}
	if err := r.Unregister(12345); err != nil {
		t.Fatalf("unregistering unknown pid: %v", err)
	}
	if _, ok := r.FindByPID(1); ok || len(r.All()) != 1 {
		t.Fatalf("table = %+v", r.All())
	}
}

func TestCleanupDeadWithSyntheticPID(t *testing.T) {
	const ghost = 1<<22 + 987654
	r, _ := Load(regPath(t), WithLister(fixedLister(os.Getpid())))
	_ = r.Register(os.Getpid(), "alive", "", 0, "/", nil)
	_ = r.Register(ghost, "ghost", "", 0, "/", nil)
	removed, err := r.CleanupDead()
	if err != nil {
		t.Fatalf("CleanupDead: %v", err)
	}
	if len(removed) != 1 || removed[0].PID != ghost {
		t.Fatalf("removed = %+v", removed)
	}
	if _, ok := r.FindByPID(ghost); ok {
		t.Fatalf("ghost still listed")
	}
	if len(r.All()) != 1 {
		t.Fatalf("all = %+v", r.All())
	}
	again, err := r.CleanupDead()
	if err != nil || len(again) != 0 {
		t.Fatalf("second pass removed %+v, %v", again, err)
	}
}

func TestCleanupDeadAgainstRealProcessTable(t *testing.T) {
	if _, err := proctable.Snapshot(); err != nil {
		t.Skipf("process table unavailable: %v", err)
	}
	const ghost = 1<<22 + 4242
	r, _ := Load(regPath(t))
	_ = r.Register(ghost, "ghost", "", 0, "/", nil)
	removed, err := r.CleanupDead()
	if err != nil {
		t.Fatalf("CleanupDead: %v", err)
	}
	if len(removed) != 1 || removed[0].PID != ghost || len(r.All()) != 0 {
		t.Fatalf("removed=%+v all=%+v", removed, r.All())
	}
}

func TestCleanupDeadListerError(t *testing.T) {
	boom := errors.New("boom")
	r, _ := Load(regPath(t), WithLister(proctable.ListerFunc(func() ([]proctable.Process, error) { return nil, boom })))
	_ = r.Register(7, "x", "", 0, "/", nil)
	if _, err := r.CleanupDead(); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(r.All()) != 1 {
		t.Fatalf("records must survive a failed snapshot")
	}
}

func TestUpdateStatusPersists(t *testing.T) {
	p := regPath(t)
	r, _ := Load(p)
	_ = r.Register(10, "a", "", 0, "/", nil)
	_ = r.Register(11, "b", "", 0, "/", nil)
	if err := r.UpdateStatus(10, StatusIdle); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateStatus(999, StatusDead); err != nil {
		t.Fatalf("unknown pid must be a no-op: %v", err)
	}
	fresh, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := fresh.FindByPID(10)
	b, _ := fresh.FindByPID(11)
	if a.Status != StatusIdle || b.Status != StatusRunning {
		t.Fatalf("statuses after reload: %v %v", a.Status, b.Status)
	}
	if len(fresh.All()) != 2 {
		t.Fatalf("unexpected records: %+v", fresh.All())
	}
}

func TestFileFormat(t *testing.T) {
	p := regPath(t)
	r, _ := Load(p)
	_ = r.Register(5, "sess", "", 0, "/w", nil)
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{`"processes"`, `"pid": 5`, `"session_id": "sess"`, `"status": "running"`, `"add_dirs": []`, `"started_at"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("file lacks %s:\n%s", want, s)
		}
	}
	if strings.Contains(s, "preset_name") {
		t.Fatalf("empty preset name must be omitted:\n%s", s)
	}
}

func TestUnknownStatusIsTolerated(t *testing.T) {
	p := regPath(t)
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	doc := `{"processes":[{"pid":3,"session_id":"z","preset_name":null,"instance_index":0,"cwd":"/","add_dirs":[],"started_at":"2024-05-01T10:00:00.123456789Z","status":"zombie"}]}`
	if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := r.FindByPID(3)
	if !ok || rec.Status != StatusUnknown || rec.PresetName != "" {
		t.Fatalf("record = %+v", rec)
	}
	if r.TakeWarning() != "" {
		t.Fatalf("unknown status must not count as corruption")
	}
	if err := r.Register(4, "y", "", 0, "/", nil); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"status": "zombie"`) || !strings.Contains(string(b), `"status": "running"`) {
		t.Fatalf("stored statuses not kept:\n%s", b)
	}
	if err := r.UpdateStatus(3, StatusIdle); err != nil {
		t.Fatal(err)
	}
	if rec, _ := r.FindByPID(3); rec.Status != StatusIdle {
		t.Fatalf("status = %v", rec.Status)
	}
	b, _ = os.ReadFile(p)
	if strings.Contains(string(b), "zombie") {
		t.Fatalf("replaced status still written:\n%s", b)
	}
}

func TestInstancesShareTheFile(t *testing.T) {
	p := regPath(t)
	a, _ := Load(p)
	b, _ := Load(p)
	if err := a.Register(1, "one", "", 0, "/", nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Register(2, "two", "", 0, "/", nil); err != nil {
		t.Fatal(err)
	}
	if len(b.All()) != 2 {
		t.Fatalf("second instance lost the first one's record: %+v", b.All())
	}
	if err := a.Reload(); err != nil {
		t.Fatal(err)
	}
	if len(a.All()) != 2 {
		t.Fatalf("reload missed records: %+v", a.All())
	}
}

func TestSchemaMentionsFields(t *testing.T) {
	b, err := MarshalSchema(FileSchema())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"processes", "session_id", "instance_index", "running", `"unknown"`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("schema lacks %q", want)
		}
	}
}

func TestCleanupDeadSnapshotsUnderLock(t *testing.T) {
	p := regPath(t)
	var locked bool
	lister := proctable.ListerFunc(func() ([]proctable.Process, error) {
		// the lock is per open file, so a second handle sees it held
		held := flock.New(p + ".lock")
		got, err := held.TryLock()
		if err == nil && got {
			_ = held.Unlock()
		}
		locked = !got
		return nil, nil
	})
	r, _ := Load(p, WithLister(lister))
	_ = r.Register(7, "x", "", 0, "/", nil)
	if _, err := r.CleanupDead(); err != nil {
		t.Fatal(err)
	}
	if !locked {
		t.Fatalf("process table was read without holding the registry lock")
	}
}

func TestLoadUnreadableStartsEmpty(t *testing.T) {
	p := regPath(t)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	r, err := Load(p)
	if err != nil {
		t.Fatalf("Load on unreadable file must not fail: %v", err)
	}
	if len(r.All()) != 0 {
		t.Fatalf("table = %+v", r.All())
	}
	if w := r.TakeWarning(); !strings.Contains(w, "could not be read") {
		t.Fatalf("warning = %q", w)
	}
	if w := r.TakeWarning(); w != "" {
		t.Fatalf("warning repeated: %q", w)
	}
}
