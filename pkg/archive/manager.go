package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/complog/internal/logging"
	"github.com/aretw0/complog/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// Ender ends a live session and returns its final document.
// *registry.Registry satisfies it.
type Ender interface {
	End(id string) ([]byte, error)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates archive access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.ArchiveStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL. Non-positive values keep the default.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new archive Manager on top of the given store.
func NewManager(store ports.ArchiveStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Finalize ends the live session through src and archives its document.
// The document is returned even when archiving fails so the caller never loses it.
func (m *Manager) Finalize(ctx context.Context, src Ender, sessionID string) ([]byte, error) {
	var doc []byte
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		doc, err = src.End(sessionID)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, doc); err != nil {
			return fmt.Errorf("failed to archive session %s: %w", sessionID, err)
		}
		return nil
	})
	if err == nil {
		m.logger.Info("Session archived", "session_id", sessionID, "size", len(doc))
	}
	return doc, err
}

// Save archives a document directly.
func (m *Manager) Save(ctx context.Context, sessionID string, doc []byte) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, doc)
	})
}

// Load retrieves an archived document.
func (m *Manager) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var doc []byte
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, sessionID)
		return err
	})
	return doc, err
}

// Delete removes an archived document.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying archive store.
func (m *Manager) Store() ports.ArchiveStore {
	return m.store
}

// LockTTL is the lease requested for each distributed lock.
func (m *Manager) LockTTL() time.Duration {
	return m.lockTTL
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
