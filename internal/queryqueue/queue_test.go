package queryqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tibia/querymanager/internal/queryobj"
)

func TestFIFOOrder(t *testing.T) {
	q := New(4)
	a := queryobj.New(8, nil)
	b := queryobj.New(8, nil)

	require.NoError(t, q.Enqueue(a))
	require.NoError(t, q.Enqueue(b))

	got1, err := q.Dequeue()
	require.NoError(t, err)
	require.Same(t, a, got1)

	got2, err := q.Dequeue()
	require.NoError(t, err)
	require.Same(t, b, got2)
}

func TestEnqueueBlocksWhenFull(t *testing.T) {
	q := New(1)
	a := queryobj.New(8, nil)
	b := queryobj.New(8, nil)

	require.NoError(t, q.Enqueue(a))

	blocked := make(chan struct{})
	go func() {
		close(blocked)
		require.NoError(t, q.Enqueue(b))
	}()

	<-blocked
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, q.Len())

	_, err := q.Dequeue()
	require.NoError(t, err)

	// Now the blocked producer should be able to finish.
	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
}

func TestEnqueueRetainFailure(t *testing.T) {
	q := New(4)
	query := queryobj.New(8, nil)
	query.Retain() // refcount now 2, so the queue's own Retain must fail.

	err := q.Enqueue(query)
	require.ErrorIs(t, err, ErrRetainFailed)
}

func TestShutdownWakesConsumersEvenWhenEmpty(t *testing.T) {
	q := New(4)

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := q.Dequeue()
			results[i] = err
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	q.Shutdown()
	wg.Wait()

	for _, err := range results {
		require.ErrorIs(t, err, ErrShutdown)
	}
}

func TestShutdownDuringEnqueueReleasesRetain(t *testing.T) {
	q := New(1)
	a := queryobj.New(8, nil)
	require.NoError(t, q.Enqueue(a))

	b := queryobj.New(8, nil)
	enqErr := make(chan error, 1)
	go func() { enqErr <- q.Enqueue(b) }()

	time.Sleep(20 * time.Millisecond)
	q.Shutdown()

	err := <-enqErr
	require.ErrorIs(t, err, ErrShutdown)
	require.Equal(t, int32(1), b.RefCount())
}
