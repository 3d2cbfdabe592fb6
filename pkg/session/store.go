package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/google/uuid"
)

// ErrNotFound marks a missing or expired session
var ErrNotFound = errors.New("session: not found")

// Session pairs the backend bearer token with its user. The two are
// always stored and cleared together.
type Session struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store persists sessions server-side, keyed by the opaque cookie value
type Store interface {
	Create(ctx context.Context, s Session) (id string, err error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in-process. Suitable for single-instance
// deployments and tests; multi-instance setups use the Redis store.
type MemoryStore struct {
	ttl time.Duration
	log *utils.Logger

	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

// NewMemoryStore creates an in-process session store
func NewMemoryStore(ttl time.Duration, log *utils.Logger) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		log:      log,
		sessions: make(map[string]memoryEntry),
	}
}

// Create stores a session under a fresh opaque id
func (m *MemoryStore) Create(_ context.Context, s Session) (string, error) {
	id := uuid.NewString()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.sessions[id] = memoryEntry{
		session:   s,
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	m.log.WithField("user", s.User.Email).Debug("Session created")
	return id, nil
}

// Get returns the session for an id, expiring lazily
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	s := entry.session
	return &s, nil
}

// Delete removes a session; deleting an unknown id is not an error
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
