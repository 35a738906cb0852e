package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found at the root of fsys.
// An empty table name means "schema_migrations".
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, table string, log *slog.Logger) error {
	if table == "" {
		table = DefaultConfig().MigrationsTable
	}

	// The sql.DB shares the pool's connections and must not be closed here.
	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(fsys)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrate"))
}

// Fatalf only logs; goose returns the error to Migrate.
func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrate"))
}
