package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// PerPage is the size of one result page.
const PerPage = 10

// ErrQuery wraps database failures of the store.
var ErrQuery = errors.New("blog: query failed")

var sortColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"excerpt":    true,
	"created_at": true,
}

// Post is one row of the posts table.
type Post struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Excerpt   string    `json:"excerpt" db:"excerpt"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Query selects one page of posts.
type Query struct {
	Page      int
	Search    string
	Sort      string
	Direction string
}

// Normalize clamps the page to 1 and replaces an unknown sort column or
// direction with "id" and "ASC".
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Sort = strings.ToLower(q.Sort)
	if !sortColumns[q.Sort] {
		q.Sort = "id"
	}
	q.Direction = strings.ToUpper(q.Direction)
	if q.Direction != "DESC" {
		q.Direction = "ASC"
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Page is a paged search result.
type Page struct {
	Data  []Post `json:"data"`
	Total int    `json:"total"`
	Pages int    `json:"pages"`
}

// PageCount returns the number of pages needed for total rows.
func PageCount(total int) int {
	return (total + PerPage - 1) / PerPage
}

// Store searches posts.
type Store interface {
	Search(ctx context.Context, q Query) (Page, error)
}

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore is the PostgreSQL Store.
type PgStore struct {
	db Querier
}

// NewPgStore creates a PgStore on db.
func NewPgStore(db Querier) *PgStore {
	return &PgStore{db: db}
}

// Search runs a case-insensitive substring search on title and excerpt.
func (s *PgStore) Search(ctx context.Context, q Query) (Page, error) {
	q = q.Normalize()

	where, args := "", []any{}
	if q.Search != "" {
		where = " WHERE title ILIKE $1 OR excerpt ILIKE $1"
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM posts"+where, args...).Scan(&total); err != nil {
		return Page{}, errors.Join(ErrQuery, err)
	}

	// Sort and direction are whitelisted by Normalize.
	sql := fmt.Sprintf(
		"SELECT id, title, excerpt, content, created_at FROM posts%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		where, q.Sort, q.Direction, len(args)+1, len(args)+2,
	)
	rows, err := s.db.Query(ctx, sql, append(args, PerPage, (q.Page-1)*PerPage)...)
	if err != nil {
		return Page{}, errors.Join(ErrQuery, err)
	}
	posts, err := pgx.CollectRows(rows, pgx.RowToStructByName[Post])
	if err != nil {
		return Page{}, errors.Join(ErrQuery, err)
	}

	return Page{Data: posts, Total: total, Pages: PageCount(total)}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
