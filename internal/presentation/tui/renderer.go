package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Print writes markdown to w, styled with glamour when w is a terminal and
// verbatim otherwise so pipes and files get plain text.
func Print(w io.Writer, markdown string) error {
	if IsTerminal(w) {
		render, err := NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(markdown)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		markdown = out
	}
	_, err := io.WriteString(w, markdown)
	return err
}
