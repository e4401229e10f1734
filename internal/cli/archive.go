package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/complog/internal/presentation/graph"
	"github.com/aretw0/complog/internal/presentation/tui"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/domain"
)

// Inspect output formats.
const (
	FormatTree    = "tree"
	FormatJSON    = "json"
	FormatMermaid = "mermaid"
)

// ListArchive prints one archived session ID per line.
func ListArchive(ctx context.Context, mgr *archive.Manager, w io.Writer) error {
	ids, err := mgr.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

// InspectArchive prints an archived document in the given format.
func InspectArchive(ctx context.Context, mgr *archive.Manager, id, format string, w io.Writer) error {
	data, err := mgr.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", id, err)
	}
	return Render(id, data, format, w)
}

// Render prints a session document in the given format.
func Render(id string, data []byte, format string, w io.Writer) error {
	if format == FormatJSON {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}

	doc, err := domain.ParseDocument(data)
	if err != nil {
		return err
	}
	switch format {
	case "", FormatTree:
		tui.PrintSummary(w, id, doc)
		return tui.Print(w, tui.Markdown(id, doc))
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(doc, graph.Options{IncludeLogs: true}))
		return err
	}
	return fmt.Errorf("unknown format %q (want tree, json or mermaid)", format)
}

// RemoveArchive deletes archived documents.
func RemoveArchive(ctx context.Context, mgr *archive.Manager, ids []string, w io.Writer) error {
	for _, id := range ids {
		if err := mgr.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to remove %s: %w", id, err)
		}
		fmt.Fprintf(w, "removed %s\n", id)
	}
	return nil
}
