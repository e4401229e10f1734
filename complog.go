package complog

import (
	"fmt"
	"iter"
	"strings"

	"github.com/aretw0/complog/pkg/registry"
)

// Logger is a handle on one session of a Registry.
// It only stores the session ID, so copies are cheap and share the session.
type Logger struct {
	reg *registry.Registry
	id  string
}

// Open creates the session id in reg and returns a handle on it.
func Open(reg *registry.Registry, id string) (*Logger, error) {
	if err := reg.Create(id); err != nil {
		return nil, err
	}
	return &Logger{reg: reg, id: id}, nil
}

// Attach returns a handle on an existing session without creating it.
// Operations fail with domain.ErrSessionNotFound once the session is gone.
func Attach(reg *registry.Registry, id string) *Logger {
	return &Logger{reg: reg, id: id}
}

// ID returns the session ID.
func (l *Logger) ID() string {
	return l.id
}

// StartTest opens a Test inside the innermost open unit.
func (l *Logger) StartTest(name string) error {
	return l.reg.StartTest(l.id, name)
}

// EndTest closes the innermost open unit, which must be a Test, recording result.
func (l *Logger) EndTest(result any) error {
	return l.reg.EndTest(l.id, result)
}

// StartStep opens a Step inside the innermost open unit.
func (l *Logger) StartStep(name string) error {
	return l.reg.StartStep(l.id, name)
}

// EndStep closes the innermost open unit, which must be a Step, recording result.
func (l *Logger) EndStep(result any) error {
	return l.reg.EndStep(l.id, result)
}

// Log formats each argument with fmt.Sprint and appends the space-joined text.
func (l *Logger) Log(args ...any) error {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return l.reg.AddLog(l.id, parts...)
}

// Logf appends a formatted line.
func (l *Logger) Logf(format string, args ...any) error {
	return l.reg.AddLog(l.id, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Snapshot pushes the current document onto the polling queue.
func (l *Logger) Snapshot() error {
	return l.reg.Snapshot(l.id)
}

// Poll yields the queue entries not read by an earlier Poll.
func (l *Logger) Poll() (iter.Seq[string], error) {
	return l.reg.Poll(l.id)
}

// Dump returns the current document without ending the session.
func (l *Logger) Dump() ([]byte, error) {
	return l.reg.Dump(l.id)
}

// End removes the session and returns its final document.
func (l *Logger) End() ([]byte, error) {
	return l.reg.End(l.id)
}
