package ui

import (
	"testing"

	xansi "github.com/charmbracelet/x/ansi"

	"sessiondeck/internal/vterm"
)

func TestRenderSnapshot(t *testing.T) {
	s := vterm.New(10, 3, 0)
	s.Process([]byte("hi \x1b[1;31mred\x1b[0m\r\n\x1b[7mx"))
	lines := renderSnapshot(s.Snapshot(), true)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	want := []string{"hi red    ", "x         ", "          "}
	for i, ln := range lines {
		if got := xansi.Strip(ln); got != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got, want[i])
		}
		if w := xansi.StringWidth(ln); w != 10 {
			t.Fatalf("line %d width = %d", i, w)
		}
	}
}

func TestRenderSnapshotWide(t *testing.T) {
	s := vterm.New(6, 1, 0)
	s.Process([]byte("a世b"))
	lines := renderSnapshot(s.Snapshot(), false)
	if got := xansi.Strip(lines[0]); got != "a世b  " {
		t.Fatalf("line = %q", got)
	}
}

func TestCellStyleCursorInverts(t *testing.T) {
	plain := vterm.Cell{Char: 'a'}
	if !cellStyle(plain, true).GetReverse() {
		t.Fatalf("cursor cell should be reversed")
	}
	inv := vterm.Cell{Char: 'a', Inverse: true}
	if cellStyle(inv, true).GetReverse() {
		t.Fatalf("inverse cell under cursor should render normal")
	}
	if !cellStyle(inv, false).GetReverse() {
		t.Fatalf("inverse cell should be reversed")
	}
}
