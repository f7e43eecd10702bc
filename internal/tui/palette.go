package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	ColorInk       = lipgloss.Color("#E5E9F0")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#88C0D0")
	ColorAccentAlt = lipgloss.Color("#81A1C1")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

// Styles shared by the command output.
var (
	FileStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	CategoryStyle = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorInk)
	DimStyle      = lipgloss.NewStyle().Foreground(ColorDim)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorError)
)

// DisableColor strips colors from every style, for --no-color and non-terminals.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
