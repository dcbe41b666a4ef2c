package session

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	values *xsync.MapOf[string, string]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: xsync.NewMapOf[string, string]()}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.values.Delete(key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.values.Clear()
	return nil
}
