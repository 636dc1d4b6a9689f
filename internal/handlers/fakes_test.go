package handlers

import (
	"context"
	"database/sql"

	"github.com/tibia/querymanager/internal/dbops"
)

// fakeQueryExecer extends the package's fakeExecer (handler_auth_test.go)
// with Query support, for handlers that list rows rather than scanning a
// single one (LoadPlayers, GetHouseOwners, GetAuctions, ...).
type fakeQueryExecer struct {
	execErr   error
	rowScan   func(dest ...any) error
	queryRows [][]any
	queryErr  error
}

func (f *fakeQueryExecer) Exec(ctx context.Context, query string, args ...any) error {
	return f.execErr
}

func (f *fakeQueryExecer) QueryRow(ctx context.Context, query string, args ...any) dbops.RowScanner {
	if f.rowScan == nil {
		return fakeRow{scan: func(dest ...any) error { return sql.ErrNoRows }}
	}
	return fakeRow{scan: f.rowScan}
}

func (f *fakeQueryExecer) Query(ctx context.Context, query string, args ...any) (dbops.RowsIter, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRowsIter{rows: f.queryRows}, nil
}

func (f *fakeQueryExecer) Begin(ctx context.Context) (dbops.Tx, error) { return nil, nil }

// fakeRowsIter serves a canned set of rows, each a slice of column values
// in scan order.
type fakeRowsIter struct {
	rows [][]any
	idx  int
}

func (r *fakeRowsIter) Next() bool { return r.idx < len(r.rows) }

func (r *fakeRowsIter) Scan(dest ...any) error {
	row := r.rows[r.idx]
	r.idx++
	for i, d := range dest {
		scanInto(d, row[i])
	}
	return nil
}

func (r *fakeRowsIter) Err() error { return nil }
func (r *fakeRowsIter) Close()     {}

func scanInto(dest, val any) {
	switch d := dest.(type) {
	case *int64:
		*d = val.(int64)
	case *int32:
		*d = val.(int32)
	case *string:
		*d = val.(string)
	case *bool:
		*d = val.(bool)
	case *uint8:
		*d = val.(uint8)
	case *uint16:
		*d = val.(uint16)
	case *[]byte:
		*d = val.([]byte)
	}
}

// fakeTx is a transaction double for handlers that go through db.WithTx.
// Exec increments a shared warnings counter for AddNotation-style flows;
// Query/QueryRow serve canned rows.
type fakeTx struct {
	warnings  int32
	execErr   error
	queryRows [][]any
	committed bool
}

func (tx *fakeTx) Exec(ctx context.Context, query string, args ...any) error {
	if tx.execErr != nil {
		return tx.execErr
	}
	tx.warnings++
	return nil
}

func (tx *fakeTx) QueryRow(ctx context.Context, query string, args ...any) dbops.RowScanner {
	return fakeRow{scan: func(dest ...any) error {
		*dest[0].(*int32) = tx.warnings
		return nil
	}}
}

func (tx *fakeTx) Query(ctx context.Context, query string, args ...any) (dbops.RowsIter, error) {
	return &fakeRowsIter{rows: tx.queryRows}, nil
}

func (tx *fakeTx) Commit(ctx context.Context) error   { tx.committed = true; return nil }
func (tx *fakeTx) Rollback(ctx context.Context) error { return nil }

// fakeBeginner hands out a single fakeTx, so tests can inspect its state
// (e.g. warnings, committed) after the handler under test returns.
type fakeBeginner struct{ tx *fakeTx }

func (fb *fakeBeginner) Begin(ctx context.Context) (dbops.Tx, error) { return fb.tx, nil }
