package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/complog/pkg/domain"
	"github.com/aretw0/complog/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ArchiveStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks matches of the patterns in log texts and unit names
// before a document is archived. Live sessions and returned documents are untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ArchiveStore) ports.ArchiveStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, doc []byte) error {
	parsed, err := domain.ParseDocument(doc)
	if err != nil {
		return err
	}
	m.mask(parsed)
	masked, err := parsed.Encode()
	if err != nil {
		return err
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) ([]byte, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(n *domain.DocumentNode) {
	n.Text = m.maskString(n.Text)
	n.Name = m.maskString(n.Name)
	if s, ok := n.Result.(string); ok {
		n.Result = m.maskString(s)
	}
	for i := range n.Logs {
		m.mask(&n.Logs[i])
	}
}

func (m *piiMiddleware) maskString(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllLiteralString(s, Mask)
	}
	return s
}
