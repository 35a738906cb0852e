package db

import "time"

// Config holds PostgreSQL pool parameters.
type Config struct {
	URL             string        `mapstructure:"url"`
	MigrationsTable string        `mapstructure:"migrations_table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	HealthCheck     time.Duration `mapstructure:"health_check_period"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
}

// DefaultConfig returns pool settings sized for a small admin panel.
func DefaultConfig() Config {
	return Config{
		MigrationsTable: "schema_migrations",
		MaxConns:        10,
		MinConns:        2,
		MaxConnIdleTime: 10 * time.Minute,
		MaxConnLifetime: 30 * time.Minute,
		HealthCheck:     time.Minute,
		RetryAttempts:   3,
		RetryInterval:   2 * time.Second,
	}
}
