package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Used in development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates an in-process store. A nil clock means time.Now.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{items: make(map[string][]byte), ttl: ttl, now: now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*VacationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id)
}

func (m *MemoryStore) loadLocked(id string) (*VacationSession, error) {
	data, ok := m.items[id]
	if !ok {
		return nil, ErrNoSession
	}
	s, err := decode(data)
	if err != nil {
		return nil, ErrNoSession
	}
	if s.Expired(m.now(), m.ttl) {
		delete(m.items, id)
		return nil, ErrNoSession
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, d Details) (*VacationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var existing *VacationSession
	if id != "" {
		existing, _ = m.loadLocked(id)
	}
	merged := Merge(existing, d, m.now())
	if existing == nil && id != "" {
		merged.ID = id
	}
	data, err := encode(merged)
	if err != nil {
		return nil, err
	}
	m.items[merged.ID] = data
	return merged, nil
}

func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// put stores a raw payload; tests use it to plant malformed records.
func (m *MemoryStore) put(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = data
}
