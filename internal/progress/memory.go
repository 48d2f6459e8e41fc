package progress

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests. Its clock is injectable
// so retention behavior can be exercised without waiting.
type MemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
	Now  func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore using the real clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.SchemaVersion = SchemaVersion
	snap.SavedAt = m.Now()
	cp := *snap
	m.snap = &cp
	return nil
}

func (m *MemoryStore) Load(_ context.Context, expectedSessionID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap == nil {
		return nil, nil
	}
	if m.snap.SchemaVersion != SchemaVersion || m.snap.Expired(m.Now()) {
		m.snap = nil
		return nil, nil
	}
	if expectedSessionID != "" && m.snap.SessionID != expectedSessionID {
		return nil, nil
	}
	cp := *m.snap
	return &cp, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func (m *MemoryStore) Exists(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap != nil, nil
}
