package stmtcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tibia/querymanager/internal/session"
)

// fakeSession is a minimal session.Session stand-in for unit tests: it
// counts prepares/closes and hands back the SQL text itself as the handle.
type fakeSession struct {
	prepares int
	closes   int
	resets   int
}

func (f *fakeSession) Checkpoint(context.Context) error { return nil }
func (f *fakeSession) MaxConcurrency() int               { return 1 }
func (f *fakeSession) Prepare(_ context.Context, sql string) (session.Stmt, error) {
	f.prepares++
	return sql, nil
}
func (f *fakeSession) CloseStmt(session.Stmt) error           { f.closes++; return nil }
func (f *fakeSession) ResetStmt(session.Stmt) error           { f.resets++; return nil }
func (f *fakeSession) DeallocateAll(context.Context) error    { return nil }
func (f *fakeSession) Begin(context.Context) (session.Tx, error) { return nil, nil }
func (f *fakeSession) Close() error                            { return nil }

func TestCacheHitMiss(t *testing.T) {
	fs := &fakeSession{}
	c := New(fs, 2)

	_, err := c.Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Equal(t, 1, fs.prepares)
	require.Equal(t, 1, c.Len())

	// Hit: no new Prepare call, but Reset runs.
	_, err = c.Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Equal(t, 1, fs.prepares)
	require.Equal(t, 1, fs.resets)
}

func TestCacheEvictsOldest(t *testing.T) {
	fs := &fakeSession{}
	c := New(fs, 1)

	_, err := c.Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)

	_, err = c.Prepare(context.Background(), "SELECT 2")
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	require.Equal(t, 1, fs.closes) // the evicted SELECT 1 statement closed
	require.Equal(t, 2, fs.prepares)
}

func TestCacheCapacityClampedToHardCeiling(t *testing.T) {
	fs := &fakeSession{}
	c := New(fs, 50000)
	require.Equal(t, hardCeiling, c.cap)
}

func TestResetAfterSessionLossIsMiss(t *testing.T) {
	fs := &fakeSession{}
	c := New(fs, 4)

	_, err := c.Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Reset()
	require.Equal(t, 0, c.Len())

	_, err = c.Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Equal(t, 2, fs.prepares) // second prepare proves it was a miss
}
