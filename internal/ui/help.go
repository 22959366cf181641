package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	gansi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# sessiondeck

## Dashboard

| Key | Action |
|-----|--------|
| ` + "`tab`" + ` | next panel |
| ` + "`j` / `k`" + ` | move selection |
| ` + "`enter`" + ` | launch preset, or resume the selected session here |
| ` + "`n`" + ` | new assistant session in the selected directory |
| ` + "`e`" + ` | open a file in the editor (diff against HEAD) |
| ` + "`x`" + ` | terminate the selected managed process |
| ` + "`K`" + ` | terminate every managed process |
| ` + "`c`" + ` | drop registry entries whose process is gone |
| ` + "`r`" + ` | reload presets |
| ` + "`/`" + ` | filter processes and orphans |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |

## Terminal

Every key is sent to the session. ` + "`ctrl+\\`" + `, ` + "`ctrl+]`" + ` or ` + "`ctrl+q`" + ` closes it.

Orphans are live sessions (per their state marker) that no registry entry
tracks, for example ones started from another shell.
`

// vitesseGlamour returns a glamour style config using the Vitesse palette.
func vitesseGlamour() gansi.StyleConfig {
	hex := func(c lipgloss.Color) string {
		s := string(c)
		if strings.HasPrefix(s, "#") && len(s) == 9 { // #RRGGBBAA
			return s[:7]
		}
		return s
	}
	sp := func(s string) *string { return &s }
	bp := func(b bool) *bool { return &b }

	text := hex(Vitesse.Text)
	secondary := hex(Vitesse.Secondary)
	blue := hex(Vitesse.Blue)
	yellow := hex(Vitesse.Yellow)
	bgSoft := hex(Vitesse.BgSoft)

	heading := gansi.StyleBlock{StylePrimitive: gansi.StylePrimitive{Color: sp(blue), Bold: bp(true)}}
	return gansi.StyleConfig{
		Document:  gansi.StyleBlock{StylePrimitive: gansi.StylePrimitive{Color: sp(text)}},
		Paragraph: gansi.StyleBlock{StylePrimitive: gansi.StylePrimitive{Color: sp(text)}},
		Heading:   heading,
		H1:        heading,
		H2:        heading,
		Text:      gansi.StylePrimitive{Color: sp(text)},
		Strong:    gansi.StylePrimitive{Bold: bp(true)},
		Code: gansi.StyleBlock{
			StylePrimitive: gansi.StylePrimitive{Color: sp(yellow), BackgroundColor: sp(bgSoft)},
		},
		Table: gansi.StyleTable{
			StyleBlock:      gansi.StyleBlock{StylePrimitive: gansi.StylePrimitive{Color: sp(secondary)}},
			CenterSeparator: sp("│"),
			ColumnSeparator: sp("│"),
			RowSeparator:    sp("─"),
		},
	}
}

// renderHelp renders the key reference for width, falling back to the
// raw markdown when glamour fails.
func renderHelp(width int) string {
	wrap := max(width-2, 20)
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(vitesseGlamour()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.Trim(out, "\n")
}
