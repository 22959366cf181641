// Package vterm turns a terminal output byte stream into a grid of styled
// cells, a cursor and a bounded scrollback.
//
// A Screen is a deterministic state machine: feeding the same bytes from
// the same starting state always yields the same grid. It performs no I/O
// and is not safe for concurrent use; owners guard it with their own lock.
package vterm

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const maxTitleLen = 256

type pen struct {
	fg, bg  Color
	bold    bool
	inverse bool
}

type savedCursor struct {
	cur   Cursor
	pen   pen
	valid bool
}

// Screen is the emulation state for one terminal.
type Screen struct {
	cols, rows int

	main, alt [][]Cell
	grid      [][]Cell
	altActive bool

	history    [][]Cell
	maxHistory int

	cur         Cursor
	pen         pen
	wrapPending bool
	saved       savedCursor
	altSaved    savedCursor

	top, bottom int

	autowrap      bool
	cursorVisible bool
	appCursor     bool
	title         string

	replies []byte
	parser  *ansi.Parser
}

// New returns a blank cols x rows screen keeping up to scrollback lines
// of history.
func New(cols, rows, scrollback int) *Screen {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if scrollback < 0 {
		scrollback = 0
	}
	s := &Screen{cols: cols, rows: rows, maxHistory: scrollback}
	s.main = newGrid(cols, rows, Color{})
	s.grid = s.main
	s.resetModes()

	s.parser = ansi.NewParser()
	s.parser.SetHandler(ansi.Handler{
		Print:     s.print,
		Execute:   s.execute,
		HandleCsi: s.handleCSI,
		HandleEsc: s.handleESC,
		HandleOsc: s.handleOSC,
	})
	return s
}

func (s *Screen) resetModes() {
	s.top, s.bottom = 0, s.rows-1
	s.autowrap = true
	s.cursorVisible = true
	s.appCursor = false
	s.pen = pen{}
	s.wrapPending = false
}

// Size returns the current dimensions.
func (s *Screen) Size() (cols, rows int) { return s.cols, s.rows }

// Process applies a chunk of terminal output. Malformed or unsupported
// sequences are consumed and ignored. Sequences split across chunks are
// completed by the next call.
func (s *Screen) Process(p []byte) {
	for _, b := range p {
		s.parser.Advance(b)
	}
}

// Write implements io.Writer on top of Process.
func (s *Screen) Write(p []byte) (int, error) {
	s.Process(p)
	return len(p), nil
}

// TakeReplies returns and clears the answers queued for device queries
// (DSR, DA). The owner forwards them to the child's input.
func (s *Screen) TakeReplies() []byte {
	if len(s.replies) == 0 {
		return nil
	}
	out := s.replies
	s.replies = nil
	return out
}

// Snapshot returns a deep copy of the visible grid and cursor.
func (s *Screen) Snapshot() Snapshot {
	cells := make([][]Cell, len(s.grid))
	for i, row := range s.grid {
		cells[i] = append([]Cell(nil), row...)
	}
	return Snapshot{
		Cols:          s.cols,
		Rows:          s.rows,
		Cells:         cells,
		Cursor:        s.cur,
		CursorVisible: s.cursorVisible,
		AltScreen:     s.altActive,
		AppCursorKeys: s.appCursor,
		Title:         s.title,
	}
}

// Scrollback returns a copy of the retained history, oldest first.
func (s *Screen) Scrollback() [][]Cell {
	out := make([][]Cell, len(s.history))
	for i, row := range s.history {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// ScrollbackLen is the number of retained history lines.
func (s *Screen) ScrollbackLen() int { return len(s.history) }

// Resize changes the viewport. Content stays anchored to the cursor: when
// the height shrinks, rows above the cursor move into scrollback; columns
// are truncated or padded.
func (s *Screen) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == s.cols && rows == s.rows {
		return
	}
	if s.altActive {
		s.alt = s.reshape(s.alt, cols, rows, &s.cur, false)
		mainCur := s.altSaved.cur
		s.main = s.reshape(s.main, cols, rows, &mainCur, true)
		s.altSaved.cur = mainCur
		s.grid = s.alt
	} else {
		s.main = s.reshape(s.main, cols, rows, &s.cur, true)
		if s.alt != nil {
			c := Cursor{}
			s.alt = s.reshape(s.alt, cols, rows, &c, false)
		}
		s.grid = s.main
	}
	s.cols, s.rows = cols, rows
	s.top, s.bottom = 0, rows-1
	s.wrapPending = false
	s.saved.cur = clampCursor(s.saved.cur, cols, rows)
	s.altSaved.cur = clampCursor(s.altSaved.cur, cols, rows)
}

func (s *Screen) reshape(g [][]Cell, cols, rows int, cur *Cursor, keep bool) [][]Cell {
	if shift := cur.Row - rows + 1; shift > 0 {
		if keep {
			for _, row := range g[:shift] {
				s.pushHistory(row)
			}
		}
		g = g[shift:]
		cur.Row -= shift
	}
	out := make([][]Cell, rows)
	for i := range out {
		if i < len(g) {
			out[i] = fitRow(g[i], cols)
		} else {
			out[i] = blankRow(cols, Color{})
		}
	}
	*cur = clampCursor(*cur, cols, rows)
	return out
}

func fitRow(row []Cell, cols int) []Cell {
	out := make([]Cell, cols)
	n := copy(out, row)
	for i := n; i < cols; i++ {
		out[i] = blankCell(Color{})
	}
	// a wide rune cut in half at the new right edge becomes a blank
	if last := out[cols-1]; n == cols && len(row) > cols && row[cols].Continuation() && !last.Continuation() {
		out[cols-1] = blankCell(last.Bg)
	}
	return out
}

func clampCursor(c Cursor, cols, rows int) Cursor {
	c.Row = clamp(c.Row, 0, rows-1)
	c.Col = clamp(c.Col, 0, cols-1)
	return c
}

func (s *Screen) pushHistory(row []Cell) {
	if s.maxHistory == 0 {
		return
	}
	if len(s.history) >= s.maxHistory {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, row)
}

func newGrid(cols, rows int, bg Color) [][]Cell {
	g := make([][]Cell, rows)
	for i := range g {
		g[i] = blankRow(cols, bg)
	}
	return g
}

func blankRow(cols int, bg Color) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = blankCell(bg)
	}
	return row
}

func blankCell(bg Color) Cell { return Cell{Char: ' ', Bg: bg} }

func (s *Screen) blank() Cell { return blankCell(s.pen.bg) }

// print places r at the cursor, honoring deferred autowrap.
func (s *Screen) print(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 || w > s.cols {
		return
	}
	if s.wrapPending {
		if s.autowrap {
			s.cur.Col = 0
			s.lineFeed()
		}
		s.wrapPending = false
	}
	if s.cur.Col+w > s.cols {
		if s.autowrap {
			s.cur.Col = 0
			s.lineFeed()
		} else {
			s.cur.Col = s.cols - w
		}
	}
	row := s.grid[s.cur.Row]
	col := s.cur.Col
	s.breakWide(row, col)
	if w == 2 {
		s.breakWide(row, col+1)
	}
	cell := Cell{Char: r, Fg: s.pen.fg, Bg: s.pen.bg, Bold: s.pen.bold, Inverse: s.pen.inverse}
	row[col] = cell
	if w == 2 {
		cell.Char = 0
		row[col+1] = cell
	}
	s.cur.Col += w
	if s.cur.Col >= s.cols {
		s.cur.Col = s.cols - 1
		s.wrapPending = true
	}
}

// breakWide blanks the other half of a wide rune about to be overwritten at col.
func (s *Screen) breakWide(row []Cell, col int) {
	if row[col].Continuation() && col > 0 {
		row[col-1].Char = ' '
	}
	if col+1 < len(row) && row[col+1].Continuation() {
		row[col+1].Char = ' '
	}
}

func (s *Screen) execute(b byte) {
	switch b {
	case '\b':
		if s.cur.Col > 0 {
			s.cur.Col--
		}
		s.wrapPending = false
	case '\t':
		next := (s.cur.Col/8 + 1) * 8
		s.cur.Col = min(next, s.cols-1)
		s.wrapPending = false
	case '\n', '\v', '\f':
		s.lineFeed()
	case '\r':
		s.cur.Col = 0
		s.wrapPending = false
	}
}

func (s *Screen) lineFeed() {
	s.wrapPending = false
	switch {
	case s.cur.Row == s.bottom:
		s.scrollUp(s.top, s.bottom, 1)
	case s.cur.Row < s.rows-1:
		s.cur.Row++
	}
}

func (s *Screen) reverseIndex() {
	s.wrapPending = false
	switch {
	case s.cur.Row == s.top:
		s.scrollDown(s.top, s.bottom, 1)
	case s.cur.Row > 0:
		s.cur.Row--
	}
}

// scrollUp moves rows top..bottom up by n. Rows leaving a full-height
// primary screen go to scrollback.
func (s *Screen) scrollUp(top, bottom, n int) {
	n = min(n, bottom-top+1)
	keep := !s.altActive && top == 0 && bottom == s.rows-1
	for i := 0; i < n; i++ {
		if keep {
			s.pushHistory(s.grid[top])
		}
		copy(s.grid[top:bottom], s.grid[top+1:bottom+1])
		s.grid[bottom] = blankRow(s.cols, s.pen.bg)
	}
}

func (s *Screen) scrollDown(top, bottom, n int) {
	n = min(n, bottom-top+1)
	for i := 0; i < n; i++ {
		copy(s.grid[top+1:bottom+1], s.grid[top:bottom])
		s.grid[top] = blankRow(s.cols, s.pen.bg)
	}
}

func (s *Screen) handleESC(cmd ansi.Cmd) {
	if cmd.Intermediate() != 0 {
		return
	}
	switch cmd.Final() {
	case '7':
		s.saved = savedCursor{cur: s.cur, pen: s.pen, valid: true}
	case '8':
		s.restoreCursor(s.saved)
	case 'D':
		s.lineFeed()
	case 'E':
		s.cur.Col = 0
		s.lineFeed()
	case 'M':
		s.reverseIndex()
	case 'c':
		s.reset()
	}
}

func (s *Screen) restoreCursor(sc savedCursor) {
	if !sc.valid {
		s.cur = Cursor{}
		s.pen = pen{}
	} else {
		s.cur = clampCursor(sc.cur, s.cols, s.rows)
		s.pen = sc.pen
	}
	s.wrapPending = false
}

func (s *Screen) reset() {
	s.altActive = false
	s.main = newGrid(s.cols, s.rows, Color{})
	s.alt = nil
	s.grid = s.main
	s.cur = Cursor{}
	s.saved = savedCursor{}
	s.altSaved = savedCursor{}
	s.title = ""
	s.resetModes()
}

func (s *Screen) handleOSC(cmd int, data []byte) {
	if cmd != 0 && cmd != 2 {
		return
	}
	title := data
	for i, b := range data {
		if b == ';' {
			title = data[i+1:]
			break
		}
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	s.title = string(title)
}

func (s *Screen) enterAlt(saveCursor bool) {
	if s.altActive {
		return
	}
	s.altSaved = savedCursor{cur: s.cur, pen: s.pen, valid: saveCursor}
	s.alt = newGrid(s.cols, s.rows, Color{})
	s.grid = s.alt
	s.altActive = true
	s.top, s.bottom = 0, s.rows-1
}

func (s *Screen) exitAlt(restoreCursor bool) {
	if !s.altActive {
		return
	}
	s.altActive = false
	s.grid = s.main
	s.top, s.bottom = 0, s.rows-1
	if restoreCursor {
		s.restoreCursor(s.altSaved)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
