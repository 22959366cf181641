package terminal

import (
	"fmt"
	"path/filepath"
	"strings"

	"sessiondeck/internal/shellsafe"
)

// ResumeScript builds the shell line that enters projectDir (or the home
// directory when that fails) and resumes sessionID.
func ResumeScript(projectDir, sessionID, assistant, permissionFlag string) (string, error) {
	if err := shellsafe.ValidatePath(projectDir); err != nil {
		return "", err
	}
	if err := shellsafe.ValidateIdentifier(sessionID); err != nil {
		return "", err
	}
	line := fmt.Sprintf("cd %s 2>/dev/null || cd ~; %s --resume %s",
		shellsafe.Quote(projectDir), shellsafe.Quote(assistant), shellsafe.Quote(sessionID))
	if permissionFlag != "" {
		line += " " + shellsafe.Quote(permissionFlag)
	}
	return line, nil
}

// EditorScript builds the bash line that opens filePath in diff mode
// against its last committed version. The editor value comes from the
// user's own configuration and is used as written.
func EditorScript(editor, filePath string) (string, error) {
	if err := shellsafe.ValidatePath(filePath); err != nil {
		return "", err
	}
	gitPath := filePath
	if !filepath.IsAbs(gitPath) && !strings.HasPrefix(gitPath, "./") {
		// HEAD:./x resolves against the working directory, HEAD:x against the repo root
		gitPath = "./" + gitPath
	}
	q := shellsafe.Quote(filePath)
	return fmt.Sprintf("%s -d %s <(git show HEAD:%s 2>/dev/null || echo 'New file')",
		editor, q, shellsafe.Quote(gitPath)), nil
}

// SpawnResume resumes an existing assistant session in projectDir.
func (s *Session) SpawnResume(projectDir, sessionID string) error {
	line, err := ResumeScript(projectDir, sessionID, s.opts.assistant, s.opts.permissionFlag)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return s.Spawn(s.opts.shell, "-c", line)
}

// SpawnNew starts a fresh assistant session.
func (s *Session) SpawnNew() error {
	var args []string
	if s.opts.permissionFlag != "" {
		args = append(args, s.opts.permissionFlag)
	}
	return s.Spawn(s.opts.assistant, args...)
}

// SpawnEditor opens filePath in the configured editor's diff mode. An
// empty path does nothing.
func (s *Session) SpawnEditor(filePath string) error {
	if filePath == "" {
		return nil
	}
	line, err := EditorScript(s.opts.editor, filePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	// process substitution needs bash regardless of the configured shell
	return s.Spawn("bash", "-c", line)
}
