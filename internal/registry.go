package internal

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps ids to plugin or theme factories. Factories are registered
// at startup and resolved by id on every request.
type Registry[F any] struct {
	mu    sync.RWMutex
	items map[string]F
}

// NewRegistry creates an empty registry.
func NewRegistry[F any]() *Registry[F] {
	return &Registry[F]{items: make(map[string]F)}
}

// Register adds f under id. Ids are case-sensitive.
func (r *Registry[F]) Register(id string, f F) error {
	if id == "" {
		return ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	r.items[id] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry[F]) MustRegister(id string, f F) {
	if err := r.Register(id, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under id.
func (r *Registry[F]) Lookup(id string) (F, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.items[id]
	return f, ok
}

// IDs returns the registered ids in lexical order.
func (r *Registry[F]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.items))
}

// Len returns the number of registered factories.
func (r *Registry[F]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
