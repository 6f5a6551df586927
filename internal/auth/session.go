package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Session is the small per-client state kept between requests.
type Session struct {
	UserID   uint64 `json:"userId"`
	UserName string `json:"userName"`
	UserRole string `json:"userRole"`
}

// SessionStore keeps sessions keyed by an opaque id.  Get refreshes the
// idle timeout.
type SessionStore interface {
	Create(ctx context.Context, s Session) (string, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string { return uuid.NewString() }

type memEntry struct {
	s       Session
	expires time.Time
}

// MemorySessionStore keeps sessions in process memory.  It backs tests and
// single-instance deployments without Redis.
type MemorySessionStore struct {
	mu   sync.Mutex
	idle time.Duration
	now  func() time.Time
	m    map[string]memEntry
}

// NewMemorySessionStore returns a store expiring sessions idle for longer
// than idle.
func NewMemorySessionStore(idle time.Duration) *MemorySessionStore {
	return &MemorySessionStore{idle: idle, now: time.Now, m: map[string]memEntry{}}
}

func (m *MemorySessionStore) Create(_ context.Context, s Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := NewSessionID()
	m.m[id] = memEntry{s: s, expires: m.now().Add(m.idle)}
	return id, nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.m[id]
	if !ok {
		return Session{}, ErrNoSession
	}
	if m.now().After(e.expires) {
		delete(m.m, id)
		return Session{}, ErrNoSession
	}
	e.expires = m.now().Add(m.idle)
	m.m[id] = e
	return e.s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, id)
	return nil
}
