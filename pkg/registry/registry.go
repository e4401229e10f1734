package registry

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/complog/internal/logging"
	"github.com/aretw0/complog/pkg/domain"
)

// DuplicatePolicy decides what Create does with an ID that is already registered.
type DuplicatePolicy int

const (
	// DuplicateReject fails with domain.ErrSessionExists.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateReplace discards the existing tree and starts over.
	DuplicateReplace
)

// ParseDuplicatePolicy maps the configuration spelling to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return DuplicateReject, nil
	case "replace":
		return DuplicateReplace, nil
	}
	return DuplicateReject, fmt.Errorf("unknown duplicate policy %q (want reject or replace)", s)
}

// entry owns one session root and the lock that serializes access to it.
type entry struct {
	mu      sync.Mutex
	session *domain.Session
	removed bool
}

// Registry manages independent session trees keyed by an opaque ID.
// It is safe for concurrent use: the map is guarded by one RWMutex and each
// session by its own mutex, so operations on different sessions never block
// each other.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	policy   DuplicatePolicy
	handlers []domain.EventHandler
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Registry.
type Option func(*Registry)

// WithDuplicatePolicy sets the Create collision policy (default DuplicateReject).
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithObserver registers a handler that receives every emitted event.
func WithObserver(h domain.EventHandler) Option {
	return func(r *Registry) {
		r.handlers = append(r.handlers, h)
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*entry),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a fresh session under id.
func (r *Registry) Create(id string) error {
	e := &entry{session: domain.NewSession()}

	// Hold the new entry until its creation event is out so that no operation
	// on it can be observed first.
	e.mu.Lock()
	r.mu.Lock()
	prev, exists := r.sessions[id]
	if exists && r.policy == DuplicateReject {
		r.mu.Unlock()
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrSessionExists, id)
	}
	r.sessions[id] = e
	r.mu.Unlock()

	// A replaced session ends before its successor is announced. An End that
	// raced with the swap has already emitted the event for it.
	if exists {
		prev.mu.Lock()
		if !prev.removed {
			prev.removed = true
			r.emit(domain.Event{Type: domain.EventSessionEnded, SessionID: id}, prev.session)
		}
		prev.mu.Unlock()
		r.logger.Warn("Session replaced, previous tree discarded", "session_id", id)
	}

	r.emit(domain.Event{Type: domain.EventSessionCreated, SessionID: id}, e.session)
	e.mu.Unlock()

	r.logger.Debug("Session created", "session_id", id)
	return nil
}

// StartTest opens a Test at the session's current insertion point.
func (r *Registry) StartTest(id, name string) error {
	return r.mutate(id, domain.Event{Type: domain.EventTestStarted, Name: name}, func(s *domain.Session) error {
		s.StartTest(name)
		return nil
	})
}

// EndTest closes the deepest open unit of the session, which must be a Test.
func (r *Registry) EndTest(id string, result any) error {
	return r.mutate(id, domain.Event{Type: domain.EventTestEnded, Result: result}, func(s *domain.Session) error {
		return s.EndTest(result)
	})
}

// StartStep opens a Step at the session's current insertion point.
func (r *Registry) StartStep(id, name string) error {
	return r.mutate(id, domain.Event{Type: domain.EventStepStarted, Name: name}, func(s *domain.Session) error {
		s.StartStep(name)
		return nil
	})
}

// EndStep closes the deepest open unit of the session, which must be a Step.
func (r *Registry) EndStep(id string, result any) error {
	return r.mutate(id, domain.Event{Type: domain.EventStepEnded, Result: result}, func(s *domain.Session) error {
		return s.EndStep(result)
	})
}

// AddLog joins parts with a single space and attaches the text as a Log.
func (r *Registry) AddLog(id string, parts ...string) error {
	text := strings.Join(parts, " ")
	return r.mutate(id, domain.Event{Type: domain.EventLogAdded, Text: text}, func(s *domain.Session) error {
		s.AddLog(text)
		return nil
	})
}

// Snapshot pushes the current document of the session onto its queue, so a
// poller receives a full picture inline with the incremental events.
func (r *Registry) Snapshot(id string) error {
	return r.withSession(id, func(e *entry) error {
		doc, err := e.session.Document()
		if err != nil {
			return err
		}
		ev := domain.Event{Type: domain.EventSnapshot, SessionID: id, Text: string(doc)}
		e.session.Enqueue(ev.Describe())
		r.emit(ev, e.session)
		return nil
	})
}

// Poll returns the unread suffix of the session queue as a lazy sequence.
//
// The sequence is bounded by the queue length observed when iteration starts.
// Every yielded element advances the session cursor under the session lock, so
// consecutive polls (or concurrent pollers) never see an element twice and
// never skip one. Ranging over the same sequence again continues from the cursor.
func (r *Registry) Poll(id string) (iter.Seq[string], error) {
	e, err := r.live(id)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		limit := -1
		for {
			e.mu.Lock()
			if limit < 0 {
				limit = e.session.QueueLen()
			}
			item, ok := e.session.Next(limit)
			e.mu.Unlock()
			if !ok || !yield(item) {
				return
			}
		}
	}, nil
}

// Drain consumes the unread suffix of the queue eagerly.
func (r *Registry) Drain(id string) ([]string, error) {
	seq, err := r.Poll(id)
	if err != nil {
		return nil, err
	}
	items := []string{}
	for item := range seq {
		items = append(items, item)
	}
	return items, nil
}

// Dump serializes the structural state of the session.
// Unknown IDs yield domain.ErrSessionNotFound, like every other operation.
func (r *Registry) Dump(id string) ([]byte, error) {
	var doc []byte
	err := r.withSession(id, func(e *entry) error {
		var err error
		doc, err = e.session.Document()
		return err
	})
	return doc, err
}

// End captures the final document of the session and removes it from the
// registry in one step. Operations racing with End either complete before the
// document is taken or fail with domain.ErrSessionNotFound.
func (r *Registry) End(id string) ([]byte, error) {
	var doc []byte
	err := r.withSession(id, func(e *entry) error {
		var err error
		doc, err = e.session.Document()
		if err != nil {
			return err
		}

		r.mu.Lock()
		if r.sessions[id] == e {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		e.removed = true

		r.emit(domain.Event{Type: domain.EventSessionEnded, SessionID: id}, e.session)
		return nil
	})
	if err == nil {
		r.logger.Debug("Session ended", "session_id", id, "size", len(doc))
	}
	return doc, err
}

// List returns the IDs of live sessions in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Has reports whether id names a live session.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) mutate(id string, ev domain.Event, fn func(*domain.Session) error) error {
	return r.withSession(id, func(e *entry) error {
		if err := fn(e.session); err != nil {
			return fmt.Errorf("session %s: %w", id, err)
		}
		ev.SessionID = id
		e.session.Enqueue(ev.Describe())
		r.emit(ev, e.session)
		return nil
	})
}

// withSession runs fn while holding the session lock.
func (r *Registry) withSession(id string, fn func(*entry) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return fn(e)
}

func (r *Registry) live(id string) (*entry, error) {
	var found *entry
	err := r.withSession(id, func(e *entry) error {
		found = e
		return nil
	})
	return found, err
}

// emit must be called with the session lock held.
func (r *Registry) emit(ev domain.Event, s *domain.Session) {
	if len(r.handlers) == 0 {
		return
	}
	ev.Timestamp = r.now()
	ev.Depth = len(s.Spine())
	for _, h := range r.handlers {
		h(ev)
	}
}
