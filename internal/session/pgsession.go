package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PGSession wraps one pgx.Conn for the networked PostgreSQL backend.
// Grounded on la2go/internal/db.DB's pgxpool usage, narrowed to a single
// dedicated connection per worker rather than a shared pool, since
// spec.md §4.4 gives each worker its own long-lived session.
type PGSession struct {
	dsn  string
	conn *pgx.Conn
}

// NewPGSession connects a single pgx connection for dsn.
func NewPGSession(ctx context.Context, dsn string) (*PGSession, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &PGSession{dsn: dsn, conn: conn}, nil
}

// MaxConcurrency reports no practical limit for a networked server.
func (s *PGSession) MaxConcurrency() int { return 1 << 30 }

// Checkpoint reconnects if the connection was dropped, rebuilding the
// caller's statement cache from empty (the caller is responsible for
// calling stmtcache.Cache.Reset after a reconnect is detected).
func (s *PGSession) Checkpoint(ctx context.Context) error {
	if s.conn != nil && !s.conn.IsClosed() {
		if err := s.conn.Ping(ctx); err == nil {
			return nil
		}
		_ = s.conn.Close(ctx)
		s.conn = nil
	}
	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("reconnecting to postgres: %w", err)
	}
	s.conn = conn
	return nil
}

// Conn returns the underlying pgx connection for dbops/pg to issue
// queries on.
func (s *PGSession) Conn() *pgx.Conn { return s.conn }

// Prepare compiles sql as a pgx-named prepared statement.
func (s *PGSession) Prepare(ctx context.Context, sql string) (Stmt, error) {
	desc, err := s.conn.Prepare(ctx, stmtName(sql), sql)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	return desc.Name, nil
}

// CloseStmt deallocates the named prepared statement.
func (s *PGSession) CloseStmt(stmt Stmt) error {
	name, _ := stmt.(string)
	if name == "" {
		return nil
	}
	return s.conn.Deallocate(context.Background(), name)
}

// ResetStmt is a no-op for pgx: the driver's extended query protocol does
// not leave implicit transactions open across statement reuse.
func (s *PGSession) ResetStmt(Stmt) error { return nil }

// DeallocateAll issues DEALLOCATE ALL, the server-side equivalent spec.md
// §4.5 requires on graceful teardown.
func (s *PGSession) DeallocateAll(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, "DEALLOCATE ALL")
	return err
}

// Begin opens a pgx transaction scope.
func (s *PGSession) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// Close closes the underlying connection.
func (s *PGSession) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close(context.Background())
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// stmtName derives a stable, slot-independent prepared-statement name from
// the SQL text's content so repeated Prepare calls for the same text under
// pgx are idempotent across reconnects.
func stmtName(sql string) string {
	h := fnv1a(sql)
	return fmt.Sprintf("qm_%x", h)
}

func fnv1a(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
