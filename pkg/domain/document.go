package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// documentIndent is the indent existing report consumers parse.
const documentIndent = "    "

// The view types fix the key order of each node kind in the document.

type sessionView struct {
	Type Kind  `json:"type"`
	Logs []any `json:"logs"`
}

type unitView struct {
	Type      Kind   `json:"type"`
	Name      string `json:"name"`
	Logs      []any  `json:"logs"`
	InProcess bool   `json:"in_process"`
	Result    any    `json:"result"`
}

type logView struct {
	Type      Kind    `json:"type"`
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

func view(n Node) any {
	switch v := n.(type) {
	case *Log:
		return logView{Type: KindLog, Timestamp: unixSeconds(v.Timestamp), Text: v.Text}
	case *Unit:
		return unitView{
			Type:      v.Kind(),
			Name:      v.Name,
			Logs:      views(v.Children),
			InProcess: v.InProcess,
			Result:    v.Result,
		}
	case *Session:
		return sessionView{Type: KindSession, Logs: views(v.Children)}
	}
	return nil
}

func views(children []Node) []any {
	out := make([]any, 0, len(children))
	for _, c := range children {
		out = append(out, view(c))
	}
	return out
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Document serializes the structural state of the session. The polling queue
// and cursor are not part of it. Output is deterministic for an unchanged tree.
func (s *Session) Document() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", documentIndent)
	if err := enc.Encode(view(s)); err != nil {
		return nil, fmt.Errorf("failed to encode session document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DocumentNode is the decoded form of any node of a session document.
// Readers such as the terminal renderer and archive tooling use it.
type DocumentNode struct {
	Type      Kind           `json:"type"`
	Name      string         `json:"name,omitempty"`
	Text      string         `json:"text,omitempty"`
	Timestamp float64        `json:"timestamp,omitempty"`
	Logs      []DocumentNode `json:"logs,omitempty"`
	InProcess *bool          `json:"in_process,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// ParseDocument decodes a session document.
func ParseDocument(data []byte) (*DocumentNode, error) {
	var doc DocumentNode
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session document: %w", err)
	}
	if doc.Type != KindSession {
		return nil, fmt.Errorf("unexpected root type %q", doc.Type)
	}
	return &doc, nil
}

// Time converts a log timestamp back to a time.Time.
func (n DocumentNode) Time() time.Time {
	sec := int64(n.Timestamp)
	nsec := int64((n.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Open reports whether a Test or Step was still running when the document was taken.
func (n DocumentNode) Open() bool {
	return n.InProcess != nil && *n.InProcess
}

func (n DocumentNode) view() any {
	if n.Type == KindLog {
		return logView{Type: KindLog, Timestamp: n.Timestamp, Text: n.Text}
	}
	logs := make([]any, 0, len(n.Logs))
	for _, c := range n.Logs {
		logs = append(logs, c.view())
	}
	if n.Type == KindTest || n.Type == KindStep {
		return unitView{Type: n.Type, Name: n.Name, Logs: logs, InProcess: n.Open(), Result: n.Result}
	}
	return sessionView{Type: KindSession, Logs: logs}
}

// Encode writes a decoded document back in the layout Session.Document produces.
func (n *DocumentNode) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", documentIndent)
	if err := enc.Encode(n.view()); err != nil {
		return nil, fmt.Errorf("failed to encode session document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
