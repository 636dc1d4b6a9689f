package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
	"github.com/tibia/querymanager/internal/queryqueue"
	"github.com/tibia/querymanager/internal/session"
)

type fakeSession struct {
	checkpointErr error
	checkpoints   int
}

func (f *fakeSession) Checkpoint(context.Context) error {
	f.checkpoints++
	return f.checkpointErr
}
func (f *fakeSession) MaxConcurrency() int { return 4 }
func (f *fakeSession) Prepare(_ context.Context, sql string) (session.Stmt, error) {
	return sql, nil
}
func (f *fakeSession) CloseStmt(session.Stmt) error        { return nil }
func (f *fakeSession) ResetStmt(session.Stmt) error        { return nil }
func (f *fakeSession) DeallocateAll(context.Context) error { return nil }
func (f *fakeSession) Begin(context.Context) (session.Tx, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeSession) Close() error { return nil }

type fakeDispatcher struct {
	handlers map[protocol.Opcode]Handler
}

func (d *fakeDispatcher) Handler(op protocol.Opcode) (Handler, bool) {
	h, ok := d.handlers[op]
	return h, ok
}

func newTestQuery(op protocol.Opcode) *queryobj.Query {
	q := queryobj.New(16, nil)
	q.Reset(op, 1)
	return q
}

func TestPoolExecutesHandlerSuccessfully(t *testing.T) {
	queue := queryqueue.New(4)
	disp := &fakeDispatcher{handlers: map[protocol.Opcode]Handler{
		protocol.OpLogin: func(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
			q.SetStatus(queryobj.StatusOk)
			return nil
		},
	}}

	fs := &fakeSession{}
	p := New(Config{Threads: 1, MaxAttempts: 3, CacheSize: 8}, queue, disp,
		func() (session.Session, error) { return fs, nil },
		func(s session.Session) *dbops.Base { return dbops.NewBase(nil, nil, "fake") },
	)

	require.NoError(t, p.Start(context.Background()))
	require.Equal(t, int64(1), p.Active())

	q := newTestQuery(protocol.OpLogin)
	require.NoError(t, queue.Enqueue(q))

	select {
	case <-q.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("query never completed")
	}
	require.Equal(t, queryobj.StatusOk, q.Status())

	p.Shutdown()
}

func TestPoolRetriesUntilFailed(t *testing.T) {
	queue := queryqueue.New(4)
	attempts := 0
	disp := &fakeDispatcher{handlers: map[protocol.Opcode]Handler{
		protocol.OpLogin: func(ctx context.Context, q *queryobj.Query, db *dbops.Base) error {
			attempts++
			return nil // leaves status Pending every time
		},
	}}

	fs := &fakeSession{}
	p := New(Config{Threads: 1, MaxAttempts: 3, CacheSize: 8}, queue, disp,
		func() (session.Session, error) { return fs, nil },
		func(s session.Session) *dbops.Base { return dbops.NewBase(nil, nil, "fake") },
	)

	require.NoError(t, p.Start(context.Background()))

	q := newTestQuery(protocol.OpLogin)
	require.NoError(t, queue.Enqueue(q))

	select {
	case <-q.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("query never completed")
	}
	require.Equal(t, queryobj.StatusFailed, q.Status())
	require.Equal(t, 3, attempts)

	p.Shutdown()
}

func TestPoolUnknownOpcodeSetsNotImplemented(t *testing.T) {
	queue := queryqueue.New(4)
	disp := &fakeDispatcher{handlers: map[protocol.Opcode]Handler{}}

	fs := &fakeSession{}
	p := New(Config{Threads: 1, MaxAttempts: 3, CacheSize: 8}, queue, disp,
		func() (session.Session, error) { return fs, nil },
		func(s session.Session) *dbops.Base { return dbops.NewBase(nil, nil, "fake") },
	)

	require.NoError(t, p.Start(context.Background()))

	q := newTestQuery(protocol.OpLogin)
	require.NoError(t, queue.Enqueue(q))

	select {
	case <-q.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("query never completed")
	}
	require.Equal(t, queryobj.StatusError, q.Status())
	require.Equal(t, protocol.CodeNotImplemented, q.Code())

	p.Shutdown()
}
