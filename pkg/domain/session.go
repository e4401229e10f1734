package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Session is the root of one logging timeline.
//
// New children are attached along the open spine: starting at the session,
// routing follows the last child for as long as that child is open and
// appends at the first level whose tail is closed (or empty). The spine is
// therefore an implicit stack and the deepest open unit is the only mutable
// point of the tree.
//
// Session is not safe for concurrent use; the registry serializes access.
type Session struct {
	Children []Node

	// queue and cursor back incremental polling and never appear in documents.
	queue  []string
	cursor int
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

func (s *Session) Kind() Kind { return KindSession }

// IsOpen is always true: a session never closes structurally.
func (s *Session) IsOpen() bool { return true }

// Deepest returns the deepest open unit on the spine, or nil when nothing is open.
func (s *Session) Deepest() *Unit {
	var open *Unit
	children := s.Children
	for len(children) > 0 {
		last := children[len(children)-1]
		if !last.IsOpen() {
			break
		}
		u, ok := last.(*Unit)
		if !ok {
			break
		}
		open = u
		children = u.Children
	}
	return open
}

// Spine returns the open units from the outermost to the deepest.
func (s *Session) Spine() []*Unit {
	var spine []*Unit
	children := s.Children
	for len(children) > 0 {
		u, ok := children[len(children)-1].(*Unit)
		if !ok || !u.IsOpen() {
			break
		}
		spine = append(spine, u)
		children = u.Children
	}
	return spine
}

func (s *Session) attach(n Node) {
	if u := s.Deepest(); u != nil {
		u.Children = append(u.Children, n)
		return
	}
	s.Children = append(s.Children, n)
}

// AddLog attaches a log entry to the current insertion point. It never fails.
func (s *Session) AddLog(text string) {
	s.attach(NewLog(text))
}

// StartTest opens a new Test at the current insertion point.
func (s *Session) StartTest(name string) {
	s.attach(NewTest(name))
}

// StartStep opens a new Step at the current insertion point.
func (s *Session) StartStep(name string) {
	s.attach(NewStep(name))
}

// EndTest closes the deepest open unit, which must be a Test.
// It returns ErrNothingOpenToClose when nothing is open or when the deepest
// open unit is a Step; the tree is left untouched in both cases.
func (s *Session) EndTest(result any) error {
	return s.end(KindTest, result)
}

// EndStep closes the deepest open unit, which must be a Step.
//
// Both end calls encode result as JSON before touching the tree. A result
// that cannot be encoded, such as NaN or a channel, is rejected with
// ErrInvalidResult and the unit stays open. The encoded copy is what the
// unit keeps, so later changes to the caller's value do not reach it.
func (s *Session) EndStep(result any) error {
	return s.end(KindStep, result)
}

func (s *Session) end(kind Kind, result any) error {
	u := s.Deepest()
	if u == nil {
		return fmt.Errorf("%w: no open %s in session", ErrNothingOpenToClose, strings.ToLower(string(kind)))
	}
	if u.Kind() != kind {
		return fmt.Errorf("%w: deepest open unit is %s %q, not a %s",
			ErrNothingOpenToClose, strings.ToLower(string(u.Kind())), u.Name, strings.ToLower(string(kind)))
	}
	raw, err := EncodeResult(result)
	if err != nil {
		return err
	}
	u.close(raw)
	return nil
}

// EncodeResult encodes a unit result the way it appears in the document.
func EncodeResult(result any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Enqueue appends an event description to the polling queue.
func (s *Session) Enqueue(desc string) {
	s.queue = append(s.queue, desc)
}

// QueueLen is the number of descriptions ever enqueued.
func (s *Session) QueueLen() int {
	return len(s.queue)
}

// Pending is the number of descriptions not yet consumed.
func (s *Session) Pending() int {
	return len(s.queue) - s.cursor
}

// Next consumes the description under the cursor if its index is below limit.
func (s *Session) Next(limit int) (string, bool) {
	if s.cursor >= limit || s.cursor >= len(s.queue) {
		return "", false
	}
	item := s.queue[s.cursor]
	s.cursor++
	return item, true
}
