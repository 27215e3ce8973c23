package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorError  = 203 // red
)

var noColor bool

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderOK returns s in the success (green) color.
func RenderOK(s string) string { return render(colorOK, s) }

// RenderError returns s in the error (red) color.
func RenderError(s string) string { return render(colorError, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
