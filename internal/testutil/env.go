package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"sessiondeck/internal/proctable"
)

// WithEnv sets env var to val for the duration of the test scope.
// Returns a cleanup func to restore previous value.
func WithEnv(t *testing.T, key, val string) func() {
	t.Helper()
	old, had := os.LookupEnv(key)
	if val == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, val)
	}
	return func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	}
}

// IsolateDirs points the config and cache locations at fresh temp dirs
// and returns them.
func IsolateDirs(t *testing.T) (configDir, cacheDir string) {
	t.Helper()
	root := t.TempDir()
	configDir = filepath.Join(root, "config")
	cacheDir = filepath.Join(root, "cache")
	t.Cleanup(WithEnv(t, "SESSIONDECK_CONFIG_DIR", configDir))
	t.Cleanup(WithEnv(t, "SESSIONDECK_CACHE_DIR", cacheDir))
	return configDir, cacheDir
}

// WriteFile writes body to dir/name, creating dir, and fails the test on error.
func WriteFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// FakeLister returns a fixed process table.
func FakeLister(procs ...proctable.Process) proctable.Lister {
	return proctable.ListerFunc(func() ([]proctable.Process, error) {
		return append([]proctable.Process(nil), procs...), nil
	})
}
