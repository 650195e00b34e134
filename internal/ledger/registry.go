package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmynk/splitledger/internal/storage"
)

// Registry maps ledger ids to open ledgers. Ledgers are restored on first use
// and share the registry's store and options.
type Registry struct {
	store storage.SnapshotStore
	opts  []Option

	mu      sync.Mutex
	ledgers map[string]*Ledger
}

// NewRegistry creates an empty registry over store.
func NewRegistry(store storage.SnapshotStore, opts ...Option) *Registry {
	return &Registry{
		store:   store,
		opts:    opts,
		ledgers: make(map[string]*Ledger),
	}
}

// Get returns the ledger for id, opening it if needed. A ledger that fails
// to load is not cached, so the next call retries the load.
func (r *Registry) Get(ctx context.Context, id string) (*Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.ledgers[id]; ok {
		return l, nil
	}
	l, _, err := Open(ctx, id, r.store, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", id, err)
	}
	r.ledgers[id] = l
	return l, nil
}

// Len returns the number of open ledgers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ledgers)
}
