// Package pg wires the networked PostgreSQL backend (jackc/pgx/v5) into
// the dbops abstraction. Query text shared with the sqlite3/MySQL
// backends uses "?" placeholders; Rebind rewrites them to pgx's "$1",
// "$2", ... positional syntax before every call, the same rewrite-on-the-
// fly approach sqlx's Rebind uses for cross-dialect query text.
package pg

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/session"
)

// Rebind rewrites sequential "?" placeholders in query to Postgres's
// "$1", "$2", ... syntax. Placeholders inside single-quoted string
// literals are left untouched.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// execer is satisfied by both *pgx.Conn and pgx.Tx, which already share
// Exec/QueryRow/Query with compatible signatures.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Adapter struct {
	e execer
}

func NewAdapter(e execer) *Adapter { return &Adapter{e: e} }

func (a *Adapter) Exec(ctx context.Context, query string, args ...any) error {
	_, err := a.e.Exec(ctx, Rebind(query), args...)
	return err
}

func (a *Adapter) QueryRow(ctx context.Context, query string, args ...any) dbops.RowScanner {
	return noRowsScanner{a.e.QueryRow(ctx, Rebind(query), args...)}
}

// noRowsScanner translates pgx.ErrNoRows to dbops.ErrNoRows so Base's
// scanResult helper recognizes logical emptiness the same way across
// backends; database/sql already returns sql.ErrNoRows natively.
type noRowsScanner struct {
	row pgx.Row
}

func (s noRowsScanner) Scan(dest ...any) error {
	err := s.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return dbops.ErrNoRows
	}
	return err
}

func (a *Adapter) Query(ctx context.Context, query string, args ...any) (dbops.RowsIter, error) {
	rows, err := a.e.Query(ctx, Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return &rowsIter{rows: rows}, nil
}

type rowsIter struct {
	rows pgx.Rows
}

func (r *rowsIter) Next() bool             { return r.rows.Next() }
func (r *rowsIter) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *rowsIter) Err() error             { return r.rows.Err() }
func (r *rowsIter) Close()                 { r.rows.Close() }

// Beginner opens pgx transactions on the session's connection.
type Beginner struct {
	Conn *pgx.Conn
}

func (b *Beginner) Begin(ctx context.Context) (dbops.Tx, error) {
	tx, err := b.Conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txAdapter{Adapter: Adapter{e: tx}, tx: tx}, nil
}

type txAdapter struct {
	Adapter
	tx pgx.Tx
}

func (t *txAdapter) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *txAdapter) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// New builds the dbops abstraction over an already-connected PG session.
func New(s *session.PGSession) *dbops.Base {
	conn := s.Conn()
	adapter := NewAdapter(conn)
	beginner := &Beginner{Conn: conn}
	return dbops.NewBase(adapter, beginner, "postgres")
}
