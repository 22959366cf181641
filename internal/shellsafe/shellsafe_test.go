package shellsafe

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

// unquote applies POSIX single-quote rules: text between single quotes is
// literal, a backslash outside quotes escapes the next byte.
func unquote(t *testing.T, s string) string {
	t.Helper()
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\'':
			inQuote = false
		case inQuote:
			b.WriteByte(c)
		case c == '\'':
			inQuote = true
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		default:
			t.Fatalf("unquoted byte %q in %q", c, s)
		}
	}
	if inQuote {
		t.Fatalf("unterminated quote in %q", s)
	}
	return b.String()
}

var roundTripInputs = []string{
	"",
	"plain",
	"/home/me/project-1/src_dir/file.go",
	"it's",
	"'",
	"''",
	"a b c",
	"semi;colon && rm -rf /",
	"$HOME and ${PATH}",
	"`whoami`",
	"$(id)",
	"tab\tnew\nline",
	"back\\slash",
	"quote'in'the'middle",
	"日本語 ディレクトリ",
	"\"double\"",
	"*?[glob]",
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, in := range roundTripInputs {
		q := Quote(in)
		if got := unquote(t, q); got != in {
			t.Fatalf("round trip %q -> %q -> %q", in, q, got)
		}
	}
}

func TestQuoteSafeClassUnmodified(t *testing.T) {
	if got := Quote("abc/DEF_1.2-x"); got != "'abc/DEF_1.2-x'" {
		t.Fatalf("Quote = %s", got)
	}
	if got := Quote("it's"); got != `'it'\''s'` {
		t.Fatalf("Quote = %s", got)
	}
}

// The real shell must agree with the in-test unquoter.
func TestQuoteThroughShell(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh available")
	}
	for _, in := range roundTripInputs {
		if strings.ContainsRune(in, '\n') {
			continue
		}
		out, err := exec.Command(sh, "-c", "printf '%s' "+Quote(in)).Output()
		if err != nil {
			t.Fatalf("sh for %q: %v", in, err)
		}
		if string(out) != in {
			t.Fatalf("shell produced %q, want %q", out, in)
		}
	}
}

func TestValidatePath(t *testing.T) {
	bad := []string{"..", "../etc", "a/../b", "/abs/..", "x/y/../../z", "./..", "../"}
	for _, p := range bad {
		if err := ValidatePath(p); !errors.Is(err, ErrPathTraversal) {
			t.Fatalf("ValidatePath(%q) = %v, want ErrPathTraversal", p, err)
		}
	}
	good := []string{"", "/", "/home/me", "rel/dir", "./here", "a/./b", "...", "a/.../b", "..hidden", "dir..", "~/src"}
	for _, p := range good {
		if err := ValidatePath(p); err != nil {
			t.Fatalf("ValidatePath(%q) = %v, want nil", p, err)
		}
	}
}

func TestValidateIdentifier(t *testing.T) {
	good := []string{"a", "Z9", "my-preset", "my_preset", "ABC-def_123"}
	for _, n := range good {
		if err := ValidateIdentifier(n); err != nil {
			t.Fatalf("ValidateIdentifier(%q) = %v", n, err)
		}
	}
	bad := []string{"", "has space", "semi;", "dot.name", "slash/x", "quote'", "dollar$", "ünï", "tab\t"}
	for _, n := range bad {
		if err := ValidateIdentifier(n); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("ValidateIdentifier(%q) = %v, want ErrInvalidName", n, err)
		}
	}
}
