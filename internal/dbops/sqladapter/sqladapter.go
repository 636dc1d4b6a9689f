// Package sqladapter adapts database/sql's *sql.DB/*sql.Tx to
// dbops.Execer/dbops.Tx/dbops.Beginner, shared by the sqlite3 and MySQL
// backends (internal/dbops/sqlite, internal/dbops/mysql). Query text uses
// "?" placeholders, database/sql's native style, so no rewriting is
// needed here (contrast internal/dbops/pg).
package sqladapter

import (
	"context"
	"database/sql"

	"github.com/tibia/querymanager/internal/dbops"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Adapter wraps a database/sql execer (*sql.DB or *sql.Tx) as dbops.Execer.
type Adapter struct {
	e execer
}

// New wraps e as a dbops.Execer.
func New(e execer) *Adapter { return &Adapter{e: e} }

func (a *Adapter) Exec(ctx context.Context, query string, args ...any) error {
	_, err := a.e.ExecContext(ctx, query, args...)
	return err
}

func (a *Adapter) QueryRow(ctx context.Context, query string, args ...any) dbops.RowScanner {
	return a.e.QueryRowContext(ctx, query, args...)
}

func (a *Adapter) Query(ctx context.Context, query string, args ...any) (dbops.RowsIter, error) {
	rows, err := a.e.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{rows: rows}, nil
}

type rowsAdapter struct {
	rows *sql.Rows
}

func (r *rowsAdapter) Next() bool             { return r.rows.Next() }
func (r *rowsAdapter) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *rowsAdapter) Err() error             { return r.rows.Err() }
func (r *rowsAdapter) Close()                 { r.rows.Close() }

// Beginner wraps a *sql.DB so it satisfies dbops.Beginner.
type Beginner struct {
	DB *sql.DB
}

func (b *Beginner) Begin(ctx context.Context) (dbops.Tx, error) {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txAdapter{Adapter: Adapter{e: tx}, tx: tx}, nil
}

type txAdapter struct {
	Adapter
	tx *sql.Tx
}

func (t *txAdapter) Commit(context.Context) error   { return t.tx.Commit() }
func (t *txAdapter) Rollback(context.Context) error { return t.tx.Rollback() }
