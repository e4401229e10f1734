package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionCreated EventType = "session_created"
	EventTestStarted    EventType = "test_started"
	EventTestEnded      EventType = "test_ended"
	EventStepStarted    EventType = "step_started"
	EventStepEnded      EventType = "step_ended"
	EventLogAdded       EventType = "log_added"
	EventSnapshot       EventType = "snapshot"
	EventSessionEnded   EventType = "session_ended"
)

// Event describes one successful registry operation on a session.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name,omitempty"`
	Text      string    `json:"text,omitempty"`
	Result    any       `json:"result,omitempty"`
	// Depth is the number of open units after the operation was applied.
	Depth int `json:"depth"`
}

// Describe renders the human-readable line stored in the session queue.
func (e Event) Describe() string {
	switch e.Type {
	case EventTestStarted:
		return join("Test Started", e.Name)
	case EventTestEnded:
		return join("Test Ended", result(e.Result))
	case EventStepStarted:
		return join("Step Started", e.Name)
	case EventStepEnded:
		return join("Step Ended", result(e.Result))
	case EventLogAdded, EventSnapshot:
		return e.Text
	case EventSessionCreated:
		return "Session Created"
	case EventSessionEnded:
		return "Session Ended"
	}
	return string(e.Type)
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func result(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// EventHandler receives registry events. Handlers run while the session is
// locked, in operation order, and must neither block nor call back into the
// registry for the same session.
type EventHandler func(Event)
