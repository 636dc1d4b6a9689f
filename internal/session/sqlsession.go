package session

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlSession is the shared shape behind both database/sql-based backends
// (sqlite3 embedded, MySQL networked): a single *sql.DB restricted to one
// open connection (SetMaxOpenConns(1)) so the Session/worker-per-session
// model from spec.md §4.4 holds even though database/sql itself pools
// internally.
type sqlSession struct {
	driver         string
	dsn            string
	db             *sql.DB
	maxConcurrency int
}

func newSQLSession(driver, dsn string, maxConcurrency int) (*sqlSession, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", driver, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", driver, err)
	}
	return &sqlSession{driver: driver, dsn: dsn, db: db, maxConcurrency: maxConcurrency}, nil
}

func (s *sqlSession) MaxConcurrency() int { return s.maxConcurrency }

// Checkpoint reconnects on demand for networked engines; for the
// single-writer sqlite3 engine this is a no-op ping (it never needs to
// rebuild a TCP connection).
func (s *sqlSession) Checkpoint(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err == nil {
		return nil
	}
	s.db.Close()
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("reconnecting %s: %w", s.driver, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("reconnect ping %s: %w", s.driver, err)
	}
	s.db = db
	return nil
}

func (s *sqlSession) DB() *sql.DB { return s.db }

func (s *sqlSession) Prepare(ctx context.Context, query string) (Stmt, error) {
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	return stmt, nil
}

func (s *sqlSession) CloseStmt(stmt Stmt) error {
	sqlStmt, ok := stmt.(*sql.Stmt)
	if !ok || sqlStmt == nil {
		return nil
	}
	return sqlStmt.Close()
}

// ResetStmt is a no-op: database/sql statements carry no server-side
// cursor state across Exec/Query calls the way some native protocols do.
func (s *sqlSession) ResetStmt(Stmt) error { return nil }

// DeallocateAll has no database/sql equivalent; both backends release
// prepared statements individually via CloseStmt as the cache evicts them.
func (s *sqlSession) DeallocateAll(context.Context) error { return nil }

func (s *sqlSession) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

func (s *sqlSession) Close() error { return s.db.Close() }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }
