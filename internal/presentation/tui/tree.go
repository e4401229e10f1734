package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/complog/pkg/domain"
)

// TimeLayout is how log timestamps appear in rendered trees.
const TimeLayout = "15:04:05.000"

// Markdown renders a session document as a nested markdown list.
// Open units are marked as running; closed units show their result.
func Markdown(title string, doc *domain.DocumentNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(doc.Logs) == 0 {
		sb.WriteString("_empty session_\n")
		return sb.String()
	}
	for _, child := range doc.Logs {
		writeNode(&sb, child, 0)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n domain.DocumentNode, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.Type {
	case domain.KindLog:
		fmt.Fprintf(sb, "%s- `%s` %s\n", indent, n.Time().Format(TimeLayout), escape(n.Text))
	default:
		fmt.Fprintf(sb, "%s- **%s** %s%s\n", indent, n.Type, escape(n.Name), status(n))
		for _, child := range n.Logs {
			writeNode(sb, child, depth+1)
		}
	}
}

func status(n domain.DocumentNode) string {
	if n.Open() {
		return " _(running)_"
	}
	if n.Result == nil {
		return ""
	}
	return " → `" + formatResult(n.Result) + "`"
}

func formatResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"\n", " ",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
