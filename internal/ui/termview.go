package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sessiondeck/internal/vterm"
)

// cellStyle converts an emulator cell's attributes into a lipgloss style.
func cellStyle(c vterm.Cell, cursor bool) lipgloss.Style {
	st := lipgloss.NewStyle()
	if !c.Fg.IsDefault() {
		st = st.Foreground(lipgloss.Color(c.Fg.String()))
	}
	if !c.Bg.IsDefault() {
		st = st.Background(lipgloss.Color(c.Bg.String()))
	}
	if c.Bold {
		st = st.Bold(true)
	}
	if c.Inverse != cursor {
		st = st.Reverse(true)
	}
	return st
}

// renderSnapshot turns a screen snapshot into one styled string per row.
// Adjacent cells with the same attributes are rendered as one run; the
// cursor cell is drawn inverted when showCursor is set.
func renderSnapshot(snap vterm.Snapshot, showCursor bool) []string {
	lines := make([]string, 0, snap.Rows)
	for r := 0; r < snap.Rows && r < len(snap.Cells); r++ {
		row := snap.Cells[r]
		curCol := -1
		if showCursor && snap.CursorVisible && snap.Cursor.Row == r {
			curCol = snap.Cursor.Col
		}
		var b strings.Builder
		var run strings.Builder
		var runCell vterm.Cell
		runCursor := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(cellStyle(runCell, runCursor).Render(run.String()))
			run.Reset()
		}
		for c := 0; c < len(row); c++ {
			cell := row[c]
			if cell.Continuation() {
				continue
			}
			isCursor := c == curCol
			if run.Len() > 0 && (!cell.SameStyle(runCell) || isCursor != runCursor) {
				flush()
			}
			if run.Len() == 0 {
				runCell, runCursor = cell, isCursor
			}
			ch := cell.Char
			if ch < ' ' {
				ch = ' '
			}
			run.WriteRune(ch)
		}
		flush()
		lines = append(lines, b.String())
	}
	return lines
}
