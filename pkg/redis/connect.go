package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	URL           string        `mapstructure:"url"`
	PoolSize      int           `mapstructure:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		PoolSize:      10,
		MinIdleConns:  2,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		RetryAttempts: 3,
		RetryInterval: 2 * time.Second,
	}
}

// options turns cfg into go-redis options, filling zero fields from DefaultConfig.
func (cfg Config) options() (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	def := DefaultConfig()
	opts.PoolSize = pick(cfg.PoolSize, def.PoolSize)
	opts.MinIdleConns = pick(cfg.MinIdleConns, def.MinIdleConns)
	opts.DialTimeout = pick(cfg.DialTimeout, def.DialTimeout)
	opts.ReadTimeout = pick(cfg.ReadTimeout, def.ReadTimeout)
	opts.WriteTimeout = pick(cfg.WriteTimeout, def.WriteTimeout)
	return opts, nil
}

// Open connects to Redis and pings it, retrying with linear backoff.
// Both redis:// and rediss:// (TLS) URLs are accepted.
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	def := DefaultConfig()
	attempts := pick(cfg.RetryAttempts, def.RetryAttempts)
	interval := pick(cfg.RetryInterval, def.RetryInterval)

	for i := range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		if err := wait(ctx, time.Duration(i+1)*interval); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}

	return nil, ErrConnectionFailed
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func pick[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
