package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/complog/pkg/domain"
)

// Options tunes the Mermaid output.
type Options struct {
	// IncludeLogs adds a node per log entry; otherwise logs are counted on their parent.
	IncludeLogs bool
}

// GenerateMermaid produces a Mermaid flowchart of a session document.
// It applies semantic styling:
// - Session: ((Circle))
// - Test: [[Subroutine]]
// - Step: [Rectangle]
// - Log: >Flag]
// Units still running are highlighted with the "running" class.
func GenerateMermaid(doc *domain.DocumentNode, opts Options) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    n0((\"Session\"))\n")

	g := &generator{sb: &sb, opts: opts}
	g.children("n0", doc.Logs)

	if len(g.running) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range g.running {
			fmt.Fprintf(&sb, "    class %s running;\n", id)
		}
	}
	return sb.String()
}

type generator struct {
	sb      *strings.Builder
	opts    Options
	next    int
	running []string
}

func (g *generator) id() string {
	g.next++
	return fmt.Sprintf("n%d", g.next)
}

func (g *generator) children(parent string, nodes []domain.DocumentNode) {
	for _, n := range nodes {
		if n.Type == domain.KindLog {
			if !g.opts.IncludeLogs {
				continue
			}
			id := g.id()
			fmt.Fprintf(g.sb, "    %s>\"%s\"]\n", id, label(n.Text))
			fmt.Fprintf(g.sb, "    %s -.-> %s\n", parent, id)
			continue
		}

		id := g.id()
		opener, closer := "[", "]"
		if n.Type == domain.KindTest {
			opener, closer = "[[", "]]"
		}
		text := fmt.Sprintf("%s: %s", n.Type, label(n.Name))
		if !g.opts.IncludeLogs {
			if logs := countLogs(n.Logs); logs > 0 {
				text += fmt.Sprintf(" <br/> %d logs", logs)
			}
		}
		fmt.Fprintf(g.sb, "    %s%s\"%s\"%s\n", id, opener, text, closer)

		arrow := "-->"
		if n.Result != nil {
			arrow = fmt.Sprintf("-- \"%s\" -->", label(fmt.Sprint(n.Result)))
		}
		fmt.Fprintf(g.sb, "    %s %s %s\n", parent, arrow, id)

		if n.Open() {
			g.running = append(g.running, id)
		}
		g.children(id, n.Logs)
	}
}

func countLogs(nodes []domain.DocumentNode) int {
	n := 0
	for _, c := range nodes {
		if c.Type == domain.KindLog {
			n++
		}
	}
	return n
}

// label escapes double quotes for Mermaid labels.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}
