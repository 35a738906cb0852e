package sshm

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned for an unknown host or key id.
	ErrNotFound = errors.New("sshm: not found")

	// ErrExists is returned when a host or key name is already taken.
	ErrExists = errors.New("sshm: name already exists")

	// ErrStore wraps database failures.
	ErrStore = errors.New("sshm: store failed")
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint.
const uniqueViolation = "23505"

// Host is one SSH host, mirrored to <ssh dir>/config.d/<Name>.
type Host struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Hostname     string    `db:"hostname" json:"hostname"`
	Port         int       `db:"port" json:"port"`
	User         string    `db:"username" json:"username"`
	IdentityFile string    `db:"identity_file" json:"identity_file"`
	Created      time.Time `db:"created" json:"created"`
	Updated      time.Time `db:"updated" json:"updated"`
}

// Key is a generated key pair. The private half stays in the SSH dir.
type Key struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PublicKey string    `db:"public_key" json:"public_key"`
	Comment   string    `db:"comment" json:"comment"`
	Created   time.Time `db:"created" json:"created"`
}

// Store persists hosts and keys.
type Store interface {
	Hosts(ctx context.Context) ([]Host, error)
	Host(ctx context.Context, id int64) (Host, error)
	CreateHost(ctx context.Context, h Host) (int64, error)
	UpdateHost(ctx context.Context, h Host) error
	DeleteHost(ctx context.Context, id int64) error

	Keys(ctx context.Context) ([]Key, error)
	Key(ctx context.Context, id int64) (Key, error)
	CreateKey(ctx context.Context, k Key) (int64, error)
	DeleteKey(ctx context.Context, id int64) error
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgStore is the PostgreSQL Store.
type PgStore struct {
	db DB
}

// NewPgStore creates a PgStore on pool.
func NewPgStore(pool DB) *PgStore {
	return &PgStore{db: pool}
}

const (
	hostColumns = "id, name, hostname, port, username, identity_file, created, updated"
	keyColumns  = "id, name, public_key, comment, created"
)

func (s *PgStore) Hosts(ctx context.Context) ([]Host, error) {
	return queryAll[Host](ctx, s.db, "SELECT "+hostColumns+" FROM ssh_hosts ORDER BY name")
}

func (s *PgStore) Host(ctx context.Context, id int64) (Host, error) {
	return queryOne[Host](ctx, s.db, "SELECT "+hostColumns+" FROM ssh_hosts WHERE id = $1", id)
}

func (s *PgStore) CreateHost(ctx context.Context, h Host) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO ssh_hosts (name, hostname, port, username, identity_file)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		h.Name, h.Hostname, h.Port, h.User, h.IdentityFile,
	).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (s *PgStore) UpdateHost(ctx context.Context, h Host) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE ssh_hosts
		 SET name = $2, hostname = $3, port = $4, username = $5, identity_file = $6, updated = now()
		 WHERE id = $1`,
		h.ID, h.Name, h.Hostname, h.Port, h.User, h.IdentityFile,
	)
	return affected(tag, err)
}

func (s *PgStore) DeleteHost(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM ssh_hosts WHERE id = $1", id)
	return affected(tag, err)
}

func (s *PgStore) Keys(ctx context.Context) ([]Key, error) {
	return queryAll[Key](ctx, s.db, "SELECT "+keyColumns+" FROM ssh_keys ORDER BY name")
}

func (s *PgStore) Key(ctx context.Context, id int64) (Key, error) {
	return queryOne[Key](ctx, s.db, "SELECT "+keyColumns+" FROM ssh_keys WHERE id = $1", id)
}

func (s *PgStore) CreateKey(ctx context.Context, k Key) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		"INSERT INTO ssh_keys (name, public_key, comment) VALUES ($1, $2, $3) RETURNING id",
		k.Name, k.PublicKey, k.Comment,
	).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

func (s *PgStore) DeleteKey(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM ssh_keys WHERE id = $1", id)
	return affected(tag, err)
}

func queryAll[T any](ctx context.Context, db DB, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return list, nil
}

func queryOne[T any](ctx context.Context, db DB, sql string, args ...any) (T, error) {
	var zero T
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return zero, errors.Join(ErrStore, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, errors.Join(ErrStore, err)
	}
	return v, nil
}

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func storeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrExists
	}
	return errors.Join(ErrStore, err)
}
