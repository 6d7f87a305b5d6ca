package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWrap = 100

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown for w.
// On a terminal it uses glamour with a style matching the background;
// otherwise markdown passes through unchanged.
func NewRenderer(w io.Writer) func(string) (string, error) {
	if !IsTerminal(w) {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	style := "light"
	if termenv.NewOutput(w).HasDarkBackground() {
		style = "dark"
	}
	wrap := defaultWrap
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 && width < wrap {
			wrap = width
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}
