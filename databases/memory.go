package databases

import (
	"bytes"
	"context"
	"strings"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore returns a process-local KeyValueStore. It backs tests and
// single-instance development runs; nothing survives a restart.
func NewMemoryStore() KeyValueStore {
	return &memoryStore{data: make(map[string]map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryStore) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(namespace)[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[namespace], key)
	return nil
}

func (m *memoryStore) Keys(_ context.Context, namespace, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data[namespace] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memoryStore) CompareAndSwap(_ context.Context, namespace, key string, prev, next []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket := m.bucket(namespace)
	cur, ok := bucket[key]
	if prev == nil {
		if ok {
			return false, nil
		}
	} else if !ok || !bytes.Equal(cur, prev) {
		return false, nil
	}
	bucket[key] = append([]byte(nil), next...)
	return true, nil
}

func (m *memoryStore) Close() error {
	return nil
}

// bucket must be called with the write lock held
func (m *memoryStore) bucket(namespace string) map[string][]byte {
	b, ok := m.data[namespace]
	if !ok {
		b = make(map[string][]byte)
		m.data[namespace] = b
	}
	return b
}
