package storage

import (
	"context"
	"sync"
)

type MemoryAdapter struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{data: make(map[string]string)}
}

func (m *MemoryAdapter) Get(ctx context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[name]
	return val, ok, nil
}

func (m *MemoryAdapter) Set(ctx context.Context, name string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[name] = value
	return nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, name)
	return nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}
