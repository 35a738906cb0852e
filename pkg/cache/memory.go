package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultTTL applies when Set is called with a zero ttl.
const DefaultTTL = time.Hour

type memoryEntry[V any] struct {
	key     string
	value   V
	expires time.Time // zero: no expiry
}

// Memory is an in-process LRU cache. Expired entries are dropped when
// they are read or pushed out by newer entries.
type Memory[V any] struct {
	mu    sync.Mutex
	max   int
	ttl   time.Duration
	items map[string]*list.Element
	order *list.List // front is most recently used
	now   func() time.Time
}

// NewMemory creates a Memory cache holding at most max entries.
// max <= 0 means unbounded.
func NewMemory[V any](max int) *Memory[V] {
	return &Memory[V]{
		max:   max,
		ttl:   DefaultTTL,
		items: make(map[string]*list.Element),
		order: list.New(),
		now:   time.Now,
	}
}

// Get returns the value stored under key.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*memoryEntry[V])
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(el)
	return e.value, nil
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl == 0 {
		ttl = m.ttl
	}
	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		e := el.Value.(*memoryEntry[V])
		e.value, e.expires = value, expires
		m.order.MoveToFront(el)
		return nil
	}

	if m.max > 0 && len(m.items) >= m.max {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.order.PushFront(&memoryEntry[V]{key: key, value: value, expires: expires})
	return nil
}

// Delete removes key.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memoryEntry[V]).key)
}

var _ Cache[string] = (*Memory[string])(nil)
