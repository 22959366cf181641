package system

import (
	"os"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger for CLI output.
// It prints to stderr with timestamps enabled for better UX.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
})

// SetLevel applies a textual level ("debug", "info", "warn", "error").
// Unknown values leave the current level untouched.
func SetLevel(level string) {
	lvl, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return
	}
	Logger.SetLevel(lvl)
}

// LogToFile redirects Logger to path, creating parent directories.
// The TUI owns the terminal while it runs, so logs must not hit stderr.
// The returned func restores stderr output and closes the file.
func LogToFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	Logger.SetOutput(f)
	return func() {
		Logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
