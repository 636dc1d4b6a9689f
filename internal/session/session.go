// Package session defines the per-worker long-lived database session
// abstraction from spec.md §4.4/§4.7/§9: an interface with exactly the
// three variation points between an embedded single-writer engine and a
// networked multi-writer one.
package session

import "context"

// Stmt is an opaque prepared-statement handle returned by Prepare. Its
// concrete type is backend-specific (e.g. *sql.Stmt).
type Stmt any

// Session is a long-lived per-worker database connection. One Session is
// created per worker at pool startup and lives for the worker's lifetime
// (spec.md §4.4).
type Session interface {
	// Checkpoint is a liveness hook called before every handler attempt.
	// It is a no-op for local/embedded engines; for networked engines it
	// reconnects on demand, and a reconnect means the statement cache must
	// be rebuilt from empty (spec.md §4.4/§4.5).
	Checkpoint(ctx context.Context) error

	// MaxConcurrency is the backend's concurrency bound, used to compute
	// min(QueryWorkerThreads, MaxConcurrency) worker counts (spec.md §4.4).
	// 1 for a file-backed engine that serializes writes, a large number
	// (effectively unlimited) otherwise.
	MaxConcurrency() int

	// Prepare compiles sql into a backend-native prepared statement. Called
	// only by internal/stmtcache on a cache miss.
	Prepare(ctx context.Context, sql string) (Stmt, error)

	// CloseStmt releases a prepared statement on the server, called by
	// internal/stmtcache on eviction or teardown.
	CloseStmt(stmt Stmt) error

	// ResetStmt is called before a cached statement is reused, for engines
	// that keep implicit transactions open on uncompleted cursors
	// (spec.md §4.5).
	ResetStmt(stmt Stmt) error

	// DeallocateAll is the server-side equivalent of `DEALLOCATE ALL`,
	// issued on graceful teardown while the connection is still alive
	// (spec.md §4.5).
	DeallocateAll(ctx context.Context) error

	// Begin opens a transaction scope (spec.md §4.6's scope-guard).
	Begin(ctx context.Context) (Tx, error)

	// Close tears down the session entirely (process shutdown).
	Close() error
}

// Tx is a scoped transaction object that rolls back on Rollback and commits
// on Commit. Callers use it as a scope guard: defer tx.Rollback() is always
// safe, since Commit marks the transaction done and a later Rollback on an
// already-committed Tx is a no-op (spec.md §9).
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
