package purchase

import (
	"context"
	"sync"
)

// Repository keeps each session's running transaction log.
type Repository interface {
	Append(ctx context.Context, sessionID string, c *Confirmation) error
	List(ctx context.Context, sessionID string) ([]*Confirmation, error)
}

// memoryRepo lives as long as the process; nothing is persisted.
type memoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]*Confirmation
}

func NewMemoryRepository() Repository {
	return &memoryRepo{entries: make(map[string][]*Confirmation)}
}

func (r *memoryRepo) Append(_ context.Context, sessionID string, c *Confirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sessionID] = append(r.entries[sessionID], c)
	return nil
}

func (r *memoryRepo) List(_ context.Context, sessionID string) ([]*Confirmation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Confirmation, len(r.entries[sessionID]))
	copy(out, r.entries[sessionID])
	return out, nil
}
