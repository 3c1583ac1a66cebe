package snapshot

import (
	"context"
	"sync"

	"github.com/matzehuels/shopfloor/pkg/layout"
)

// MemoryStore keeps encoded snapshots in a map. Values are copied on the way
// in and out, so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load returns a copy of the stored snapshot, or nil on a miss.
func (s *MemoryStore) Load(ctx context.Context, name string) (*layout.Snapshot, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.data[name]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return Decode(data)
}

// Save stores a copy of snap.
func (s *MemoryStore) Save(ctx context.Context, name string, snap *layout.Snapshot) error {
	if err := validName(name); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[name] = data
	s.mu.Unlock()
	return nil
}

// Delete forgets name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ Store = (*MemoryStore)(nil)

// NullStore is a no-op store that never keeps anything.
// Useful when persistence should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return NullStore{}
}

// Load always reports a miss.
func (NullStore) Load(ctx context.Context, name string) (*layout.Snapshot, error) {
	return nil, nil
}

// Save does nothing.
func (NullStore) Save(ctx context.Context, name string, snap *layout.Snapshot) error {
	return nil
}

// Delete does nothing.
func (NullStore) Delete(ctx context.Context, name string) error { return nil }

// Ping always succeeds.
func (NullStore) Ping(ctx context.Context) error { return nil }

// Close does nothing.
func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
