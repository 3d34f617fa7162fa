package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme defines the colors used for the different output elements.
type ColorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	Success     *color.Color
	Error       *color.Color
	Highlight   *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		Success:     color.New(color.FgGreen),
		Error:       color.New(color.FgRed),
		Highlight:   color.New(color.FgMagenta, color.Bold),
	}
}

// NoColorScheme returns a scheme with every color disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	scheme.Method.DisableColor()
	scheme.URL.DisableColor()
	scheme.StatusOK.DisableColor()
	scheme.StatusWarn.DisableColor()
	scheme.StatusError.DisableColor()
	scheme.HeaderKey.DisableColor()
	scheme.Success.DisableColor()
	scheme.Error.DisableColor()
	scheme.Highlight.DisableColor()
	return scheme
}

// stdoutIsTerminal reports whether stdout is an interactive terminal;
// redirected output drops colors automatically.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
