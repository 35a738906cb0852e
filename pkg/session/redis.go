package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "pablo:session:"

// RedisStore keeps sessions as JSON strings in Redis with a TTL that
// matches the session expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix overrides the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a RedisStore on the given client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidToken
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := encode(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sess.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	sess, err := decode(data)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

// Update implements Store.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	return s.Create(ctx, sess)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func encode(sess *Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, errors.Join(ErrCodec, err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Join(ErrCodec, err)
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}
	return &sess, nil
}
