package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderStatusBar draws a one-line bar: a key chip followed by left
// nuggets, padding, then right nuggets. Segments are dropped from the end
// of each side until the bar fits width.
func renderStatusBar(width int, key lipgloss.Color, leftParts, rightParts []string) string {
	w := width
	if w <= 0 {
		w = 100
	}
	base := StatusBarBase()
	nugget := lipgloss.NewStyle().Foreground(Vitesse.OnAccent).Padding(0, 1)
	nuggetBG := []lipgloss.Color{Vitesse.Blue, Vitesse.Yellow, Vitesse.Magenta, Vitesse.Cyan}

	left := make([]string, 0, len(leftParts))
	for i, s := range leftParts {
		if i == 0 {
			left = append(left, ChipStyle(key).MarginRight(1).Inherit(base).Render(s))
			continue
		}
		left = append(left, base.Padding(0, 1).Render(s))
	}
	right := make([]string, 0, len(rightParts))
	for i, s := range rightParts {
		right = append(right, nugget.Background(nuggetBG[i%len(nuggetBG)]).Render(s))
	}

	width2 := func(parts []string) int { return xansi.StringWidth(strings.Join(parts, "")) }
	for width2(left)+width2(right) > w && len(right) > 0 {
		right = right[:len(right)-1]
	}
	for width2(left)+width2(right) > w && len(left) > 1 {
		left = left[:len(left)-1]
	}
	l, r := strings.Join(left, ""), strings.Join(right, "")
	if lw := xansi.StringWidth(l); lw > w {
		l = xansi.Truncate(l, w, "…")
	}
	center := base.Width(max(w-xansi.StringWidth(l)-xansi.StringWidth(r), 0)).Render("")
	return base.MaxWidth(w).Render(l + center + r)
}
