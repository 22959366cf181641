package vterm

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
)

func (s *Screen) handleCSI(cmd ansi.Cmd, params ansi.Params) {
	if cmd.Intermediate() != 0 {
		return
	}
	switch cmd.Prefix() {
	case '?':
		switch cmd.Final() {
		case 'h':
			s.setPrivateModes(params, true)
		case 'l':
			s.setPrivateModes(params, false)
		}
		return
	case 0:
	default:
		return
	}

	// count returns the first parameter treating 0 and missing as 1.
	count := func() int {
		n, _, _ := params.Param(0, 1)
		return max(n, 1)
	}

	switch cmd.Final() {
	case 'A':
		s.moveRows(-count())
	case 'B', 'e':
		s.moveRows(count())
	case 'C', 'a':
		s.setCol(s.cur.Col + count())
	case 'D':
		s.setCol(s.cur.Col - count())
	case 'E':
		s.moveRows(count())
		s.setCol(0)
	case 'F':
		s.moveRows(-count())
		s.setCol(0)
	case 'G', '`':
		s.setCol(count() - 1)
	case 'H', 'f':
		row, _, _ := params.Param(0, 1)
		col, _, _ := params.Param(1, 1)
		s.cur.Row = clamp(max(row, 1)-1, 0, s.rows-1)
		s.setCol(max(col, 1) - 1)
	case 'd':
		s.cur.Row = clamp(count()-1, 0, s.rows-1)
		s.wrapPending = false
	case 'J':
		mode, _, _ := params.Param(0, 0)
		s.eraseDisplay(mode)
	case 'K':
		mode, _, _ := params.Param(0, 0)
		s.eraseLine(mode)
	case 'X':
		row := s.grid[s.cur.Row]
		end := min(s.cur.Col+count(), s.cols)
		for i := s.cur.Col; i < end; i++ {
			row[i] = s.blank()
		}
	case '@':
		s.insertChars(count())
	case 'P':
		s.deleteChars(count())
	case 'L':
		if s.cur.Row >= s.top && s.cur.Row <= s.bottom {
			s.scrollDown(s.cur.Row, s.bottom, count())
			s.cur.Col = 0
		}
	case 'M':
		if s.cur.Row >= s.top && s.cur.Row <= s.bottom {
			// deleted lines never reach scrollback
			n := min(count(), s.bottom-s.cur.Row+1)
			for i := 0; i < n; i++ {
				copy(s.grid[s.cur.Row:s.bottom], s.grid[s.cur.Row+1:s.bottom+1])
				s.grid[s.bottom] = blankRow(s.cols, s.pen.bg)
			}
			s.cur.Col = 0
		}
	case 'S':
		s.scrollUp(s.top, s.bottom, count())
	case 'T':
		if len(params) <= 1 {
			s.scrollDown(s.top, s.bottom, count())
		}
	case 'r':
		top, _, _ := params.Param(0, 1)
		bottom, _, _ := params.Param(1, s.rows)
		top, bottom = max(top, 1)-1, min(max(bottom, 1), s.rows)-1
		if top < bottom {
			s.top, s.bottom = top, bottom
			s.cur = Cursor{}
			s.wrapPending = false
		}
	case 's':
		s.saved = savedCursor{cur: s.cur, pen: s.pen, valid: true}
	case 'u':
		s.restoreCursor(s.saved)
	case 'm':
		s.sgr(params)
	case 'n':
		switch n, _, _ := params.Param(0, 0); n {
		case 5:
			s.replies = append(s.replies, "\x1b[0n"...)
		case 6:
			s.replies = append(s.replies, fmt.Sprintf("\x1b[%d;%dR", s.cur.Row+1, s.cur.Col+1)...)
		}
	case 'c':
		if n, _, _ := params.Param(0, 0); n == 0 {
			s.replies = append(s.replies, "\x1b[?1;2c"...)
		}
	}
}

func (s *Screen) setPrivateModes(params ansi.Params, on bool) {
	for i := range params {
		switch params[i].Param(0) {
		case 1:
			s.appCursor = on
		case 7:
			s.autowrap = on
			if !on {
				s.wrapPending = false
			}
		case 25:
			s.cursorVisible = on
		case 47, 1047:
			if on {
				s.enterAlt(false)
			} else {
				s.exitAlt(false)
			}
		case 1049:
			if on {
				s.enterAlt(true)
			} else {
				s.exitAlt(true)
			}
		}
	}
}

// moveRows moves the cursor vertically, stopping at the scroll margins
// when it starts inside them.
func (s *Screen) moveRows(n int) {
	lo, hi := 0, s.rows-1
	if s.cur.Row >= s.top && s.cur.Row <= s.bottom {
		lo, hi = s.top, s.bottom
	}
	s.cur.Row = clamp(s.cur.Row+n, lo, hi)
	s.wrapPending = false
}

func (s *Screen) setCol(c int) {
	s.cur.Col = clamp(c, 0, s.cols-1)
	s.wrapPending = false
}

func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseLine(0)
		for r := s.cur.Row + 1; r < s.rows; r++ {
			s.grid[r] = blankRow(s.cols, s.pen.bg)
		}
	case 1:
		s.eraseLine(1)
		for r := 0; r < s.cur.Row; r++ {
			s.grid[r] = blankRow(s.cols, s.pen.bg)
		}
	case 2:
		for r := range s.grid {
			s.grid[r] = blankRow(s.cols, s.pen.bg)
		}
	case 3:
		s.history = nil
	}
}

func (s *Screen) eraseLine(mode int) {
	row := s.grid[s.cur.Row]
	from, to := 0, s.cols
	switch mode {
	case 0:
		from = s.cur.Col
	case 1:
		to = s.cur.Col + 1
	case 2:
	default:
		return
	}
	for i := from; i < to; i++ {
		row[i] = s.blank()
	}
}

func (s *Screen) insertChars(n int) {
	row := s.grid[s.cur.Row]
	n = min(n, s.cols-s.cur.Col)
	copy(row[s.cur.Col+n:], row[s.cur.Col:s.cols-n])
	for i := s.cur.Col; i < s.cur.Col+n; i++ {
		row[i] = s.blank()
	}
	s.wrapPending = false
}

func (s *Screen) deleteChars(n int) {
	row := s.grid[s.cur.Row]
	n = min(n, s.cols-s.cur.Col)
	copy(row[s.cur.Col:], row[s.cur.Col+n:])
	for i := s.cols - n; i < s.cols; i++ {
		row[i] = s.blank()
	}
	s.wrapPending = false
}

func (s *Screen) sgr(params ansi.Params) {
	if len(params) == 0 {
		s.pen = pen{}
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i].Param(0)
		switch {
		case p == 0:
			s.pen = pen{}
		case p == 1:
			s.pen.bold = true
		case p == 22:
			s.pen.bold = false
		case p == 7:
			s.pen.inverse = true
		case p == 27:
			s.pen.inverse = false
		case p >= 30 && p <= 37:
			s.pen.fg = Indexed(uint8(p - 30))
		case p == 39:
			s.pen.fg = Color{}
		case p >= 40 && p <= 47:
			s.pen.bg = Indexed(uint8(p - 40))
		case p == 49:
			s.pen.bg = Color{}
		case p >= 90 && p <= 97:
			s.pen.fg = Indexed(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			s.pen.bg = Indexed(uint8(p - 100 + 8))
		case p == 38 || p == 48:
			c, used, ok := extendedColor(params[i:])
			if ok {
				if p == 38 {
					s.pen.fg = c
				} else {
					s.pen.bg = c
				}
			}
			i += used
		}
	}
}

// extendedColor decodes 38/48 selectors in both "38;5;n" and "38:5:n"
// forms, including "38:2:cs:r:g:b". params[0] is the 38 or 48 itself; the
// result reports how many following params were consumed.
func extendedColor(params ansi.Params) (Color, int, bool) {
	var vals []int
	used := 0
	if params[0].HasMore() {
		for j := 1; j < len(params); j++ {
			vals = append(vals, params[j].Param(0))
			used++
			if !params[j].HasMore() {
				break
			}
		}
		if len(vals) == 5 && vals[0] == 2 {
			vals = append(vals[:1], vals[2:]...)
		}
	} else {
		if len(params) < 2 {
			return Color{}, 0, false
		}
		need := 0
		switch params[1].Param(0) {
		case 5:
			need = 2
		case 2:
			need = 4
		default:
			return Color{}, 1, false
		}
		for j := 1; j <= need && j < len(params); j++ {
			vals = append(vals, params[j].Param(0))
			used++
		}
	}
	if len(vals) == 0 {
		return Color{}, used, false
	}
	switch vals[0] {
	case 5:
		if len(vals) >= 2 {
			return Indexed(uint8(clamp(vals[1], 0, 255))), used, true
		}
	case 2:
		if len(vals) >= 4 {
			return RGB(uint8(clamp(vals[1], 0, 255)), uint8(clamp(vals[2], 0, 255)), uint8(clamp(vals[3], 0, 255))), used, true
		}
	}
	return Color{}, used, false
}
