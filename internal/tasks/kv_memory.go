package tasks

import (
	"context"
	"sync"
)

// MemoryKV is an in-process KV. Contents are lost on exit.
type MemoryKV struct {
	mu    sync.Mutex
	store map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		store: make(map[string]string),
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.store[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, key)
	return nil
}
