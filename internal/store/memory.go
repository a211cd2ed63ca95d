package store

import (
	"context"
	"sync"
)

// MemoryBackend implements Backend with in-process storage
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[Collection][]byte
}

// NewMemoryBackend creates a new in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[Collection][]byte),
	}
}

func (b *MemoryBackend) Name() string {
	return "memory"
}

// Read returns a copy of the stored document
func (b *MemoryBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	document, exists := b.collections[c]
	if !exists {
		return nil, ErrCollectionNotFound
	}

	return append([]byte(nil), document...), nil
}

// Write replaces the stored document
func (b *MemoryBackend) Write(ctx context.Context, c Collection, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.collections[c] = append([]byte(nil), document...)
	return nil
}

func (b *MemoryBackend) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (b *MemoryBackend) Close(ctx context.Context) error {
	return nil
}
