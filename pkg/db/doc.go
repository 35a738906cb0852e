// Package db manages the PostgreSQL pool shared by the data-backed plugins.
//
//	pool, err := db.Connect(ctx, cfg)
//	err = db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log)
//
// Connect retries with linear backoff so the server survives a database that
// starts after it. Migrate runs goose over an fs.FS, normally the embedded
// migrations package. Healthcheck and Shutdown plug into pkg/health and the
// server shutdown hooks.
package db
