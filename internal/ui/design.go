package ui

import (
	"github.com/charmbracelet/lipgloss"

	"sessiondeck/internal/adoption"
	"sessiondeck/internal/registry"
)

// Design centralizes the TUI color palette and common styles.
//
// Palette is based on Vitesse Dark Soft:
// https://github.com/antfu/vscode-theme-vitesse/blob/main/themes/vitesse-dark-soft.json
type designTheme struct {
	Primary lipgloss.Color // #4d9375
	Blue    lipgloss.Color // #6394bf
	Yellow  lipgloss.Color // #e6cc77
	Magenta lipgloss.Color // #d9739f
	Cyan    lipgloss.Color // #5eaab5
	Red     lipgloss.Color // #cb7676

	Text      lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color

	Bg       lipgloss.Color
	BgSoft   lipgloss.Color
	Border   lipgloss.Color
	OnAccent lipgloss.Color

	BarFG lipgloss.AdaptiveColor
	BarBG lipgloss.AdaptiveColor
}

// Vitesse is the global design theme for the TUI.
var Vitesse = designTheme{
	Primary: lipgloss.Color("#4d9375"),
	Blue:    lipgloss.Color("#6394bf"),
	Yellow:  lipgloss.Color("#e6cc77"),
	Magenta: lipgloss.Color("#d9739f"),
	Cyan:    lipgloss.Color("#5eaab5"),
	Red:     lipgloss.Color("#cb7676"),

	Text:      lipgloss.Color("#dbd7caee"),
	Secondary: lipgloss.Color("#bfbaaa"),
	Muted:     lipgloss.Color("#dedcd590"),

	Bg:       lipgloss.Color("#181818"),
	BgSoft:   lipgloss.Color("#292929"),
	Border:   lipgloss.Color("#3a3a3a"),
	OnAccent: lipgloss.Color("#222"),

	BarFG: lipgloss.AdaptiveColor{Light: "#343433", Dark: "#bfbaaa"},
	BarBG: lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#222"},
}

func BorderStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(Vitesse.Border) }

func AccentBold() lipgloss.Style { return lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Primary) }

func MutedStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(Vitesse.Muted) }

// SelectedStyle highlights the selected row of a focused panel.
func SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(Vitesse.OnAccent).Background(Vitesse.Primary)
}

// ChipStyle returns a style for colored status-bar segments.
func ChipStyle(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Vitesse.OnAccent).Background(bg).Padding(0, 1)
}

func StatusBarBase() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Vitesse.BarFG).Background(Vitesse.BarBG)
}

// processColor maps a registry status to its accent.
func processColor(s registry.Status) lipgloss.Color {
	switch s {
	case registry.StatusRunning:
		return Vitesse.Primary
	case registry.StatusIdle:
		return Vitesse.Yellow
	case registry.StatusDead:
		return Vitesse.Red
	}
	return Vitesse.Muted
}

// markerColor maps a session marker status to its accent.
func markerColor(s adoption.MarkerStatus) lipgloss.Color {
	switch s {
	case adoption.MarkerWorking:
		return Vitesse.Cyan
	case adoption.MarkerActive:
		return Vitesse.Primary
	case adoption.MarkerIdle:
		return Vitesse.Yellow
	case adoption.MarkerWaiting:
		return Vitesse.Magenta
	}
	return Vitesse.Muted
}
