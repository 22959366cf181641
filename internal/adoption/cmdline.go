package adoption

import "strings"

var sessionFlags = []string{"--session-id", "--resume"}

// MentionsSession reports whether cmdline passes id to --session-id or
// --resume, space or '=' separated, bare or single-quoted.
func MentionsSession(cmdline, id string) bool {
	if id == "" {
		return false
	}
	for _, flag := range sessionFlags {
		for _, sep := range []string{" ", "="} {
			for _, tok := range []string{id, "'" + id + "'"} {
				if containsWord(cmdline, flag+sep+tok) {
					return true
				}
			}
		}
	}
	return false
}

// containsWord finds needle ending on a word boundary, so "abc" does not
// match "abcdef".
func containsWord(s, needle string) bool {
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], needle)
		if i < 0 {
			return false
		}
		end := off + i + len(needle)
		if end == len(s) || isSeparator(s[end]) {
			return true
		}
		off += i + 1
	}
	return false
}

// ExtractCwd returns the target of the first `cd '<path>'` or `cd /path`
// in cmdline, or "" when there is none.
func ExtractCwd(cmdline string) string {
	for off := 0; off < len(cmdline); {
		i := strings.Index(cmdline[off:], "cd ")
		if i < 0 {
			return ""
		}
		i += off
		off = i + 3
		if i > 0 && !isSeparator(cmdline[i-1]) && cmdline[i-1] != '(' && cmdline[i-1] != '\'' {
			continue
		}
		rest := strings.TrimLeft(cmdline[i+3:], " ")
		switch {
		case strings.HasPrefix(rest, "'"):
			if w, ok := shellWord(rest); ok && w != "" {
				return w
			}
		case strings.HasPrefix(rest, "/"):
			if end := strings.IndexAny(rest, " \t;"); end >= 0 {
				return rest[:end]
			}
			return rest
		}
	}
	return ""
}

// shellWord decodes one POSIX shell word built from '...' segments,
// backslash escapes and bare characters.
func shellWord(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'':
			j := strings.IndexByte(s[i+1:], '\'')
			if j < 0 {
				return "", false
			}
			b.WriteString(s[i+1 : i+1+j])
			i += j + 2
		case c == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i += 2
		case isSeparator(c):
			return b.String(), true
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), true
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', ';', '&', '|', ')', '"':
		return true
	}
	return false
}
