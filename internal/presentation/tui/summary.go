package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/complog/pkg/domain"
	"github.com/muesli/termenv"
)

// Stats counts the nodes of a session document.
type Stats struct {
	Tests   int
	Steps   int
	Logs    int
	Running int
}

// Count walks the document.
func Count(doc *domain.DocumentNode) Stats {
	var s Stats
	var walk func(nodes []domain.DocumentNode)
	walk = func(nodes []domain.DocumentNode) {
		for _, n := range nodes {
			switch n.Type {
			case domain.KindTest:
				s.Tests++
			case domain.KindStep:
				s.Steps++
			case domain.KindLog:
				s.Logs++
			}
			if n.Open() {
				s.Running++
			}
			walk(n.Logs)
		}
	}
	walk(doc.Logs)
	return s
}

// PrintSummary writes a one-line colored digest of the document to w.
// Colors are dropped automatically when w is not a terminal.
func PrintSummary(w io.Writer, id string, doc *domain.DocumentNode) {
	out := termenv.NewOutput(w)
	s := Count(doc)

	name := out.String(id).Bold().Foreground(out.Color("#818cf8"))
	state := out.String("complete").Foreground(out.Color("#22c55e"))
	if s.Running > 0 {
		state = out.String(fmt.Sprintf("%d running", s.Running)).Foreground(out.Color("#f59e0b"))
	}
	fmt.Fprintf(w, "%s  tests=%d steps=%d logs=%d  %s\n", name, s.Tests, s.Steps, s.Logs, state)
}
