package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Local stores each blob as an indented JSON file under a base
// directory. Writes go through a temp file rename so a crash mid-write
// never leaves a truncated queue on disk.
type Local struct {
	basePath string
	mu       sync.Mutex
}

// NewLocal creates a file-backed store rooted at basePath.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		basePath = "./data"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

func (l *Local) pathFor(key string) string {
	// Sanitize key for filename
	return filepath.Join(l.basePath, filepath.Base(key)+".json")
}

// Get reads and unmarshals the blob file for key.
func (l *Local) Get(_ context.Context, key string, v interface{}) error {
	l.mu.Lock()
	data, err := os.ReadFile(l.pathFor(key))
	l.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Put marshals v and replaces the blob file for key.
func (l *Local) Put(_ context.Context, key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.pathFor(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
