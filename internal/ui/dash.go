package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// calcInnerWidths computes inner content widths (excluding the 2 border
// characters) for n columns separated by gap.
func calcInnerWidths(totalW, cols, gap int) []int {
	if cols <= 0 {
		return []int{}
	}
	avail := totalW - gap*(cols-1) - 2*cols
	if avail < cols*10 {
		avail = cols * 10
	}
	base := avail / cols
	rem := avail % cols
	out := make([]int, cols)
	for i := range out {
		w := base
		if i < rem {
			w++
		}
		out[i] = max(w, 12)
	}
	return out
}

// renderCard draws a box of inner width and exactly innerLines content
// lines, with title embedded in the top border. A focused card gets the
// accent border.
func renderCard(inner int, title string, lines []string, innerLines int, focused bool) string {
	inner = max(inner, 12)
	innerLines = max(innerLines, 1)
	color := Vitesse.Border
	if focused {
		color = Vitesse.Primary
	}
	border := lipgloss.NewStyle().Foreground(color)

	var b strings.Builder
	b.WriteString(renderTopBorder(inner, title, border))
	b.WriteString("\n")
	for i := 0; i < innerLines; i++ {
		var ln string
		if i < len(lines) {
			ln = lines[i]
		}
		b.WriteString(border.Render("│"))
		b.WriteString(" ")
		b.WriteString(fitWidth(ln, inner-1))
		b.WriteString(border.Render("│"))
		b.WriteString("\n")
	}
	b.WriteString(border.Render("╰" + strings.Repeat("─", inner) + "╯"))
	return b.String()
}

func renderTopBorder(inner int, title string, border lipgloss.Style) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return border.Render("╭" + strings.Repeat("─", inner) + "╮")
	}
	tStyled := AccentBold().Render(t)
	tW := xansi.StringWidth(tStyled)
	leftFill := 1
	maxTitleW := max(inner-leftFill-2, 0)
	if tW > maxTitleW {
		tStyled = xansi.Truncate(tStyled, maxTitleW, "")
		tW = xansi.StringWidth(tStyled)
	}
	rightFill := max(inner-leftFill-tW-2, 1)
	return border.Render("╭"+strings.Repeat("─", leftFill)+" ") + tStyled +
		border.Render(" "+strings.Repeat("─", rightFill)+"╮")
}

// fitWidth pads or truncates s (ANSI-aware) to exactly w cells.
func fitWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := xansi.StringWidth(s)
	if sw > w {
		s = xansi.Truncate(s, w, "…")
		sw = xansi.StringWidth(s)
	}
	if sw < w {
		s += strings.Repeat(" ", w-sw)
	}
	return s
}

// joinCols aligns card blocks horizontally with a fixed gap.
func joinCols(cols []string, innerWidths []int, gap int) string {
	if len(cols) == 0 {
		return ""
	}
	split := make([][]string, len(cols))
	outerW := make([]int, len(cols))
	maxH := 0
	for i, c := range cols {
		split[i] = strings.Split(strings.TrimRight(c, "\n"), "\n")
		maxH = max(maxH, len(split[i]))
		iw := 12
		if i < len(innerWidths) {
			iw = innerWidths[i]
		}
		outerW[i] = iw + 2
	}
	var b strings.Builder
	for row := 0; row < maxH; row++ {
		for i := range cols {
			if row < len(split[i]) {
				b.WriteString(split[i][row])
			} else {
				b.WriteString(strings.Repeat(" ", outerW[i]))
			}
			if i != len(cols)-1 {
				b.WriteString(strings.Repeat(" ", gap))
			}
		}
		if row != maxH-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// scrollWindow returns the [start,end) slice of n rows to show in height
// lines so that sel stays visible.
func scrollWindow(n, sel, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := 0
	if sel >= height {
		start = sel - height + 1
	}
	end := min(start+height, n)
	return start, end
}
