package vterm

import (
	"fmt"
	"strings"
)

// ColorKind tells how a Color is encoded.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is a terminal color: the terminal default, a palette index
// (0-255) or a 24-bit value.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// Indexed returns a palette color.
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// RGB returns a truecolor value.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// IsDefault reports whether c is the terminal default color.
func (c Color) IsDefault() bool { return c.Kind == ColorDefault }

// String renders c in the form lipgloss.Color accepts: "" for the default,
// the decimal index for palette colors and #rrggbb otherwise.
func (c Color) String() string {
	switch c.Kind {
	case ColorIndexed:
		return fmt.Sprintf("%d", c.Index)
	case ColorRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return ""
}

// Cell is one grid position. A wide rune occupies its cell plus a
// continuation cell whose Char is 0.
type Cell struct {
	Char    rune
	Fg, Bg  Color
	Bold    bool
	Inverse bool
}

// Continuation reports whether c is the trailing half of a wide rune.
func (c Cell) Continuation() bool { return c.Char == 0 }

// SameStyle reports whether two cells render with identical attributes.
func (c Cell) SameStyle(o Cell) bool {
	return c.Fg == o.Fg && c.Bg == o.Bg && c.Bold == o.Bold && c.Inverse == o.Inverse
}

// Cursor is a zero-based grid position.
type Cursor struct {
	Row, Col int
}

// Snapshot is a detached copy of the visible screen.
type Snapshot struct {
	Cols, Rows    int
	Cells         [][]Cell
	Cursor        Cursor
	CursorVisible bool
	AltScreen     bool
	// AppCursorKeys is set while the application requested DECCKM, so
	// arrow keys must be sent as SS3 sequences.
	AppCursorKeys bool
	Title         string
}

// Line returns the text of row with trailing blanks removed.
func (s Snapshot) Line(row int) string {
	if row < 0 || row >= len(s.Cells) {
		return ""
	}
	return rowText(s.Cells[row])
}

// Text joins all rows with newlines.
func (s Snapshot) Text() string {
	lines := make([]string, len(s.Cells))
	for i := range s.Cells {
		lines[i] = rowText(s.Cells[i])
	}
	return strings.Join(lines, "\n")
}

func rowText(row []Cell) string {
	var b strings.Builder
	for _, c := range row {
		if c.Continuation() {
			continue
		}
		b.WriteRune(c.Char)
	}
	return strings.TrimRight(b.String(), " ")
}
