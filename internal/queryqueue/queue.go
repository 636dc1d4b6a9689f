// Package queryqueue implements the bounded FIFO work queue from
// spec.md §4.3, grounded on JeelKantaria-db-bouncer's TenantPool
// (sync.Mutex + two sync.Cond, a "room"/"work" pair rather than
// db-bouncer's single idle-return cond) generalized from a connection
// pool to a query queue.
package queryqueue

import (
	"errors"
	"sync"

	"github.com/tibia/querymanager/internal/queryobj"
)

// ErrShutdown is returned by Enqueue/Dequeue once the queue has been shut
// down.
var ErrShutdown = errors.New("queryqueue: shut down")

// ErrRetainFailed is returned when a query's refcount was not exactly 1 at
// enqueue time — a programming error per spec.md §4.3.
var ErrRetainFailed = errors.New("queryqueue: refcount was not 1, programming error")

// Queue is a bounded ring buffer of *queryobj.Query, capacity
// 2×MaxConnections per spec.md §3.
type Queue struct {
	mu   sync.Mutex
	room *sync.Cond
	work *sync.Cond

	items []*queryobj.Query
	head  int
	size  int

	shutdown bool
}

// New creates a queue with the given capacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	q := &Queue{items: make([]*queryobj.Query, capacity)}
	q.room = sync.NewCond(&q.mu)
	q.work = sync.NewCond(&q.mu)
	return q
}

// Len returns the current number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the queue's fixed capacity.
func (q *Queue) Cap() int { return len(q.items) }

// Enqueue retains query (CAS refcount 1→2) and blocks until there is room,
// or until Shutdown is called. FIFO order is preserved by the ring buffer.
func (q *Queue) Enqueue(query *queryobj.Query) error {
	if !query.Retain() {
		return ErrRetainFailed
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == len(q.items) && !q.shutdown {
		q.room.Wait()
	}
	if q.shutdown {
		query.Release() // undo the Retain — nobody will ever dequeue this.
		return ErrShutdown
	}

	tail := (q.head + q.size) % len(q.items)
	q.items[tail] = query
	q.size++

	wasEmpty := q.size == 1
	if wasEmpty {
		q.work.Broadcast()
	}
	return nil
}

// Dequeue blocks until an item is available or the queue is shut down, in
// which case it returns (nil, ErrShutdown) even if items remain — spec.md
// §4.3: "consumers observing the flag exit immediately, even if the queue
// is empty."
func (q *Queue) Dequeue() (*queryobj.Query, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.shutdown {
		q.work.Wait()
	}
	if q.shutdown {
		return nil, ErrShutdown
	}

	item := q.items[q.head]
	q.items[q.head] = nil
	q.head = (q.head + 1) % len(q.items)
	q.size--

	q.room.Signal()
	return item, nil
}

// Shutdown raises the shutdown flag and wakes every blocked producer and
// consumer.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	q.shutdown = true
	q.mu.Unlock()
	q.work.Broadcast()
	q.room.Broadcast()
}
