package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON encoded values under "<prefix>:<key>".
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis cache on client, as returned by pkg/redis.Open.
func NewRedis[V any](client redis.UniversalClient, prefix string) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, ttl: DefaultTTL}
}

// Get returns the value stored under key.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return decode[V](data)
}

// Set stores value under key. A negative ttl stores it without expiry.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

// Delete removes key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

var _ Cache[string] = (*Redis[string])(nil)
