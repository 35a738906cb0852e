package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned for a missing or expired key.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrCodec is returned when a value cannot be encoded or decoded.
	ErrCodec = errors.New("cache: value encoding failed")
)

// Cache stores values of type V under string keys.
//
// A positive ttl expires the entry after that duration; zero uses the
// cache default; a negative ttl keeps the entry until it is evicted.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Loader computes a missing value.
type Loader[V any] func(ctx context.Context) (V, error)

// Group collapses concurrent loads of the same key into one call.
type Group[V any] struct {
	cache Cache[V]
	ttl   time.Duration
	sf    singleflight.Group
}

// NewGroup wraps c. Loaded values are stored with ttl.
func NewGroup[V any](c Cache[V], ttl time.Duration) *Group[V] {
	return &Group[V]{cache: c, ttl: ttl}
}

// Get returns the cached value for key, or runs load once for all
// concurrent callers and caches its result. Load errors are not cached.
// A failing cache backend degrades to calling load.
func (g *Group[V]) Get(ctx context.Context, key string, load Loader[V]) (V, error) {
	if v, err := g.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := g.sf.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = g.cache.Set(ctx, key, v, g.ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func encode[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrCodec, err)
	}
	return data, nil
}

func decode[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrCodec, err)
	}
	return v, nil
}
