package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errStoreDown = errors.New("store down")

// Mock CollectionStore
type mockStore struct {
	mu      sync.Mutex
	data    map[string]string
	sets    map[string]int
	failGet bool
	failSet map[string]bool

	// delay widens the window between read and write in concurrency tests
	delay time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{
		data:    make(map[string]string),
		sets:    make(map[string]int),
		failSet: make(map[string]bool),
	}
}

func (m *mockStore) Get(ctx context.Context, name string) (string, bool, error) {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet {
		return "", false, errStoreDown
	}
	v, ok := m.data[name]
	return v, ok, nil
}

func (m *mockStore) Set(ctx context.Context, name string, value string) error {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet[name] {
		return errStoreDown
	}
	m.sets[name]++
	m.data[name] = value
	return nil
}

func (m *mockStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, name)
	return nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return nil
}

func (m *mockStore) setCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[name]
}
