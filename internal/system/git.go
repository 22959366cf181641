package system

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// GitInfo summarizes the repository a session directory lives in.
type GitInfo struct {
	InRepo   bool
	Branch   string
	ShortSHA string
	Dirty    bool
}

const gitTimeout = 800 * time.Millisecond

// git runs one git query in dir with a short timeout.
func git(ctx context.Context, dir string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, "git", append([]string{"-C", dir}, args...)...).Output()
	return strings.TrimSpace(string(out)), err
}

// GetGitInfo inspects the repository containing dir. A missing git binary
// or a directory outside any work tree yields the zero GitInfo.
func GetGitInfo(ctx context.Context, dir string) GitInfo {
	var gi GitInfo
	if _, err := exec.LookPath("git"); err != nil {
		return gi
	}
	if out, err := git(ctx, dir, "rev-parse", "--is-inside-work-tree"); err != nil || out != "true" {
		return gi
	}
	gi.InRepo = true

	if out, err := git(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil {
		gi.Branch = out
	} else if out, err := git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		// detached head
		gi.Branch = out
	}
	if out, err := git(ctx, dir, "rev-parse", "--short", "HEAD"); err == nil {
		gi.ShortSHA = out
	}
	if out, err := git(ctx, dir, "status", "--porcelain"); err == nil {
		gi.Dirty = out != ""
	}
	return gi
}
