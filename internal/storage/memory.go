package storage

import (
	"context"
	"sync"
)

// Memory is the in-memory RecordStore used by default and in tests
type Memory struct {
	mu    sync.RWMutex
	kinds map[string]map[string][]byte
}

// NewMemory creates an empty in-memory record store
func NewMemory() *Memory {
	return &Memory{kinds: make(map[string]map[string][]byte)}
}

// Put stores value under (kind, key), replacing any existing record
func (m *Memory) Put(ctx context.Context, kind, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, ok := m.kinds[kind]
	if !ok {
		records = make(map[string][]byte)
		m.kinds[kind] = records
	}

	// Copy so callers can reuse their buffer
	stored := make([]byte, len(value))
	copy(stored, value)
	records[key] = stored
	return nil
}

// Get returns the record stored under (kind, key) or ErrNotFound
func (m *Memory) Get(ctx context.Context, kind, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.kinds[kind][key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// List returns all records of a kind, keyed by record key
func (m *Memory) List(ctx context.Context, kind string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.kinds[kind]))
	for key, value := range m.kinds[kind] {
		copied := make([]byte, len(value))
		copy(copied, value)
		out[key] = copied
	}
	return out, nil
}

// Delete removes the record under (kind, key)
func (m *Memory) Delete(ctx context.Context, kind, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.kinds[kind], key)
	return nil
}
