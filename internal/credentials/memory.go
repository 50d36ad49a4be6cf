package credentials

import (
	"context"
	"sync"

	"github.com/Veraticus/marketpulse/internal/model"
)

// MemoryStore keeps the session in process memory only.
type MemoryStore struct {
	session *model.Session
	mu      sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored session.
func (m *MemoryStore) Load(_ context.Context) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return usable(m.session), nil
}

// Save replaces the stored session.
func (m *MemoryStore) Save(_ context.Context, session model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := session.Clone()
	m.session = &s
	return nil
}

// Clear forgets the stored session.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
