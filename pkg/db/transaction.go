package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxStarter is satisfied by *pgxpool.Pool and pgx.Tx.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn in a transaction: rolled back if fn errors or panics,
// committed otherwise. A panic is re-raised after the rollback.
func WithTx(ctx context.Context, db TxStarter, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
