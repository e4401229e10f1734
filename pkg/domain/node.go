package domain

import (
	"encoding/json"
	"time"
)

// Kind tags a node in a session tree. The values double as the "type" field of
// the serialized document.
type Kind string

const (
	KindSession Kind = "Session"
	KindTest    Kind = "Test"
	KindStep    Kind = "Step"
	KindLog     Kind = "Log"
)

// Node is any element that can appear in a container's children.
type Node interface {
	Kind() Kind
	// IsOpen reports whether routing may descend into the node.
	IsOpen() bool
}

// Log is a timestamped leaf entry. It is final as soon as it is created.
type Log struct {
	Timestamp time.Time
	Text      string
}

// NewLog creates a Log stamped with the current time.
func NewLog(text string) *Log {
	return &Log{Timestamp: now(), Text: text}
}

func (l *Log) Kind() Kind { return KindLog }

// IsOpen is always false: a log can never receive children.
func (l *Log) IsOpen() bool { return false }

// Unit is a named container representing a Test or a Step.
// A unit is created open and closed exactly once by its matching end call,
// after which it and its subtree are immutable.
type Unit struct {
	kind      Kind
	Name      string
	Children  []Node
	InProcess bool
	// Result is the encoded value passed to the closing call. It stays nil
	// while the unit is open.
	Result json.RawMessage
}

// NewTest creates an open Test.
func NewTest(name string) *Unit {
	return &Unit{kind: KindTest, Name: name, InProcess: true}
}

// NewStep creates an open Step.
func NewStep(name string) *Unit {
	return &Unit{kind: KindStep, Name: name, InProcess: true}
}

func (u *Unit) Kind() Kind { return u.kind }

func (u *Unit) IsOpen() bool { return u.InProcess }

func (u *Unit) close(result json.RawMessage) {
	u.InProcess = false
	u.Result = result
}

// now is swapped in tests to get stable timestamps.
var now = time.Now
