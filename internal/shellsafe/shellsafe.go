// Package shellsafe builds shell-safe command fragments and validates
// user-controlled paths and names before they reach a command line.
package shellsafe

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrPathTraversal is returned for paths with a ".." component.
	ErrPathTraversal = errors.New("path traversal not allowed")
	// ErrInvalidName is returned for names outside [A-Za-z0-9_-].
	ErrInvalidName = errors.New("invalid name")
)

// ValidatePath rejects any path that contains a literal ".." component,
// at any depth. Other dot segments ("." or "...") are fine.
func ValidatePath(path string) error {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == os.PathSeparator
	})
	for _, p := range parts {
		if p == ".." {
			return fmt.Errorf("%w: %q", ErrPathTraversal, path)
		}
	}
	return nil
}

// ValidateIdentifier accepts only ASCII letters, digits, '-' and '_'.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isAlnum(c) && c != '-' && c != '_' {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}

// Quote returns s as a single-quoted POSIX shell token.
// Embedded single quotes become '\'' so the token always unquotes to s.
func Quote(s string) string {
	if isSafe(s) {
		return "'" + s + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isAlnum(c) && c != '.' && c != '/' && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
