package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/complog/internal/logging"
	"github.com/aretw0/complog/pkg/domain"
)

// DefaultStreamBuffer is the per-subscriber channel size.
const DefaultStreamBuffer = 64

// StreamManager fans registry events out to live SSE and WebSocket clients.
// Its Observe method is registered as a registry observer.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Event]struct{} // SessionID -> Set of Channels
	buffer      int
	logger      *slog.Logger
}

// NewStreamManager creates a broker whose subscribers buffer up to buffer events.
func NewStreamManager(buffer int, logger *slog.Logger) *StreamManager {
	if buffer <= 0 {
		buffer = DefaultStreamBuffer
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan domain.Event]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a channel for the events of sessionID.
// The returned cancel func unregisters and closes the channel; it is idempotent.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan domain.Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan domain.Event, sm.buffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan domain.Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[sessionID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, sessionID)
		}
	}
}

// Subscribers returns the number of clients following sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Observe is a domain.EventHandler. It never blocks: a client whose buffer is
// full misses the event.
func (sm *StreamManager) Observe(ev domain.Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("Stream: client buffer full, dropping event",
				"session_id", ev.SessionID,
				"type", ev.Type,
			)
		}
	}
}
