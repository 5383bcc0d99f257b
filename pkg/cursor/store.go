package cursor

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound indicates no cursor is stored under the key.
	ErrNotFound = errors.New("cursor not found")

	// ErrInvalidCursor indicates stored cursor data could not be decoded.
	ErrInvalidCursor = errors.New("invalid cursor data")
)

// Store persists cursors by key.
type Store interface {
	Load(ctx context.Context, key Key) (*Cursor, error)
	Save(ctx context.Context, c *Cursor) error
	Delete(ctx context.Context, key Key) error
}

// LoadOrNew loads the cursor for key, or returns a fresh one when none
// is stored.
func LoadOrNew(ctx context.Context, store Store, key Key) (*Cursor, error) {
	c, err := store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return New(key), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MemoryStore keeps cursors in process memory. Loaded cursors are copies,
// so a caller's changes are only visible to others after Save.
type MemoryStore struct {
	mu      sync.RWMutex
	cursors map[string]Cursor
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cursors: make(map[string]Cursor)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, key Key) (*Cursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cursors[key.String()]
	if !ok {
		storeOps.WithLabelValues("memory", "load", "miss").Inc()
		return nil, ErrNotFound
	}
	storeOps.WithLabelValues("memory", "load", "hit").Inc()
	return &c, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, c *Cursor) error {
	if c == nil {
		return fmt.Errorf("cursor cannot be nil")
	}
	if c.Key == "" {
		return fmt.Errorf("cursor key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[c.Key] = *c
	storeOps.WithLabelValues("memory", "save", "ok").Inc()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cursors, key.String())
	storeOps.WithLabelValues("memory", "delete", "ok").Inc()
	return nil
}
