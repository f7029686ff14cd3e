// package ui provides the lipgloss stylesheet for CLI output
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles is the default palette used by CLI output: Spotify green for success, red for errors.
var Styles = NewPalette("#1DB954", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	Title lipgloss.Style
	OK    lipgloss.Style
	Err   lipgloss.Style
	Warn  lipgloss.Style
	Help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		Title: NewBold(t).MarginBottom(1),
		OK:    NewBold(s),
		Err:   NewBold(e),
		Warn:  NewStyle(w),
		Help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Check renders a green check-marked message.
func Check(msg string) string {
	return Styles.OK.Render("✓ " + msg)
}

// Cross renders a red cross-marked message.
func Cross(msg string) string {
	return Styles.Err.Render("✗ " + msg)
}

// Caution renders an orange warning message.
func Caution(msg string) string {
	return Styles.Warn.Render("⚠ " + msg)
}
