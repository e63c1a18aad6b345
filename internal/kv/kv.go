// Package kv defines the durable key-value storage the timer store writes to.
// Implementations live under internal/infrastructure.
package kv

import (
	"errors"
	"maps"
	"sync"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Store is a minimal durable key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Memory is an in-process Store. It is used in tests and as a fallback when
// no durable backend can be opened.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// PutErr, when set, is returned by every Put.
	PutErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Snapshot returns a copy of every stored value.
func (m *Memory) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}
