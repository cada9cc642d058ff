package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process blob store. Values are stored as marshaled
// JSON so Get/Put round-trips behave exactly like the durable backends.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Get unmarshals the stored blob into v.
func (m *Memory) Get(_ context.Context, key string, v interface{}) error {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, v)
}

// Put stores v under key, replacing any previous value.
func (m *Memory) Put(_ context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return nil
}
