package vhosts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/markc/pablo/pkg/db"
)

var (
	// ErrNotFound is returned for an unknown vhost id.
	ErrNotFound = errors.New("vhosts: vhost not found")

	// ErrStore wraps database failures.
	ErrStore = errors.New("vhosts: store failed")
)

// Vhost is one hosted domain with its mail and disk limits.
// Quotas are in bytes.
type Vhost struct {
	ID        int64     `db:"id"`
	Domain    string    `db:"domain"`
	Aliases   int       `db:"aliases"`
	Mailboxes int       `db:"mailboxes"`
	MailQuota int64     `db:"mailquota"`
	DiskQuota int64     `db:"diskquota"`
	Active    bool      `db:"active"`
	Created   time.Time `db:"created"`
	Updated   time.Time `db:"updated"`
}

// Limits are the editable fields of a vhost.
type Limits struct {
	Aliases   int
	Mailboxes int
	MailQuota int64
	DiskQuota int64
	Active    bool
}

// Store reads and updates vhost records. Records are created and removed
// by the addvhost and delvhost host scripts.
type Store interface {
	List(ctx context.Context) ([]Vhost, error)
	Get(ctx context.Context, id int64) (Vhost, error)
	Update(ctx context.Context, id int64, l Limits) error
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore is the PostgreSQL Store.
type PgStore struct {
	db DB
}

// NewPgStore creates a PgStore on pool.
func NewPgStore(pool DB) *PgStore {
	return &PgStore{db: pool}
}

const vhostColumns = "id, domain, aliases, mailboxes, mailquota, diskquota, active, created, updated"

// List returns all vhosts, most recently updated first.
func (s *PgStore) List(ctx context.Context) ([]Vhost, error) {
	rows, err := s.db.Query(ctx, "SELECT "+vhostColumns+" FROM vhosts ORDER BY updated DESC, id DESC")
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[Vhost])
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return list, nil
}

// Get returns the vhost with id.
func (s *PgStore) Get(ctx context.Context, id int64) (Vhost, error) {
	rows, err := s.db.Query(ctx, "SELECT "+vhostColumns+" FROM vhosts WHERE id = $1", id)
	if err != nil {
		return Vhost{}, errors.Join(ErrStore, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Vhost])
	if errors.Is(err, pgx.ErrNoRows) {
		return Vhost{}, ErrNotFound
	}
	if err != nil {
		return Vhost{}, errors.Join(ErrStore, err)
	}
	return v, nil
}

// Update stores new limits for id. The row is locked while the limits are
// written so concurrent edits serialize.
func (s *PgStore) Update(ctx context.Context, id int64, l Limits) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, "SELECT id FROM vhosts WHERE id = $1 FOR UPDATE", id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Join(ErrStore, err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE vhosts
			 SET aliases = $2, mailboxes = $3, mailquota = $4, diskquota = $5, active = $6, updated = now()
			 WHERE id = $1`,
			id, l.Aliases, l.Mailboxes, l.MailQuota, l.DiskQuota, l.Active,
		)
		if err != nil {
			return errors.Join(ErrStore, err)
		}
		return nil
	})
}
