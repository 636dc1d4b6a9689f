package queryobj

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tibia/querymanager/internal/protocol"
)

func TestRefCountLifecycle(t *testing.T) {
	released := false
	q := New(64, func(*Query) { released = true })
	require.Equal(t, int32(1), q.RefCount())

	require.True(t, q.Retain())
	require.Equal(t, int32(2), q.RefCount())

	// A second Retain must fail: refcount is 2, not 1.
	require.False(t, q.Retain())

	// Worker finishes: 2 -> 1. Done closes, signalling the response is
	// ready to flush; the query itself is not yet destroyed.
	q.Release()
	require.Equal(t, int32(1), q.RefCount())
	require.False(t, released)

	select {
	case <-q.Done():
	default:
		t.Fatal("Done must close once refcount returns to 1")
	}

	// Connection goroutine recycles after flushing: 1 -> 0.
	q.Release()
	require.Equal(t, int32(0), q.RefCount())
	require.True(t, released)
}

func TestReleaseBelowZeroPanics(t *testing.T) {
	q := New(64, nil)
	q.Release() // 1 -> 0, destroys
	require.Panics(t, func() { q.Release() })
}

func TestWireStatusPendingPanics(t *testing.T) {
	q := New(64, nil)
	require.Panics(t, func() { q.WireStatus() })
}

func TestSetErrorRoundTrip(t *testing.T) {
	q := New(64, nil)
	q.SetError(protocol.CodeNameTaken)
	require.Equal(t, StatusError, q.Status())
	require.Equal(t, protocol.CodeNameTaken, q.Code())
	require.Equal(t, protocol.StatusError, q.WireStatus())
}

func TestPoolReuse(t *testing.T) {
	p := NewPool(128)
	q1 := p.Get(protocol.OpLoginGame, 7)
	require.Equal(t, int32(1), q1.RefCount())
	require.Equal(t, int32(7), q1.WorldID)

	q1.Release()

	q2 := p.Get(protocol.OpLogoutGame, 9)
	require.Equal(t, int32(1), q2.RefCount())
	require.Equal(t, int32(9), q2.WorldID)
}
