// Package queryobj implements the reference-counted Query object shared
// between a connection's goroutine and a worker, per spec.md §3/§5.
package queryobj

import (
	"sync"
	"sync/atomic"

	"github.com/tibia/querymanager/internal/protocol"
)

// Status mirrors protocol.Status plus the internal-only Pending value
// used while a handler is still running or awaiting retry.
type Status int32

const (
	StatusPending Status = iota
	StatusOk
	StatusError
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusOk:
		return "ok"
	case StatusError:
		return "error"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Query is allocated by the connection goroutine once a request frame has
// been read, and released when its reference count reaches 0. Exactly one of
// {connection goroutine, work queue, worker} holds a reference at a time,
// except during the handoff to a worker (count == 2), per spec.md §3.
type Query struct {
	refcount atomic.Int32
	status   atomic.Int32
	code     atomic.Int32 // protocol.Code, valid when status == StatusError

	Opcode  protocol.Opcode
	WorldID int32

	// Buf is the single shared request/response buffer. The request is
	// read into it before handoff; the handler may only begin writing the
	// response once it has fully parsed the request, per spec.md §4.4's
	// handler contract — never concurrently with the still-being-read
	// request.
	Buf []byte

	// ReqLen is the number of request bytes the connection goroutine read
	// into Buf before handoff.
	ReqLen int

	// RespLen is the number of response bytes the handler wrote into Buf.
	RespLen int

	done chan struct{}
	once sync.Once

	release func(*Query)
}

// New allocates a Query with refcount 1 backed by a buffer of size
// bufSize. release is called exactly once, when the refcount reaches 0,
// and is normally the owning pool's Put.
func New(bufSize int, release func(*Query)) *Query {
	q := &Query{
		Buf:     make([]byte, bufSize),
		done:    make(chan struct{}),
		release: release,
	}
	q.refcount.Store(1)
	q.status.Store(int32(StatusPending))
	return q
}

// Retain attempts the spec's "bump from 1 to 2" CAS used by Enqueue.
// Returns false if the count was not exactly 1 (a programming error per
// spec.md §4.3 — the caller should reject the request, not retry).
func (q *Query) Retain() bool {
	return q.refcount.CompareAndSwap(1, 2)
}

// Release decrements the reference count and has two distinct effects
// depending on which transition it causes, mirroring spec.md §3's two
// lifecycle events:
//
//   - 2 → 1 (the worker releasing after Retain): closes Done, the
//     idiomatic-Go channel generalization of "the driver observes
//     count==1 and is free to write the response."
//   - 1 → 0 (the connection goroutine recycling the query once the
//     response has been flushed, or an immediate reply that was never
//     enqueued at all): invokes the owning pool's release callback,
//     destroying the query per spec.md §3's "destroyed when its count
//     reaches 0".
//
// Any other resulting count is a programming error.
func (q *Query) Release() {
	switch n := q.refcount.Add(-1); n {
	case 1:
		q.once.Do(func() { close(q.done) })
	case 0:
		if q.release != nil {
			q.release(q)
		}
	default:
		panic("queryobj: invalid refcount after Release")
	}
}

// Done returns a channel closed once the refcount returns to 1 — the
// worker has finished and a response (if any) is ready to flush.
func (q *Query) Done() <-chan struct{} { return q.done }

// RefCount returns the current reference count (for tests/metrics only).
func (q *Query) RefCount() int32 { return q.refcount.Load() }

// Status returns the current status.
func (q *Query) Status() Status { return Status(q.status.Load()) }

// SetStatus sets the status.
func (q *Query) SetStatus(s Status) { q.status.Store(int32(s)) }

// SetError sets status to Error with the given logical code.
func (q *Query) SetError(code protocol.Code) {
	q.code.Store(int32(code))
	q.status.Store(int32(StatusError))
}

// Code returns the logical error code set by SetError.
func (q *Query) Code() protocol.Code { return protocol.Code(q.code.Load()) }

// WireStatus maps the internal Status to the wire protocol.Status. Pending
// must never be observed here — the worker resolves it to Ok/Error/Failed
// before release, per spec.md §6 ("Status 4 (Pending) never appears on the
// wire").
func (q *Query) WireStatus() protocol.Status {
	switch q.Status() {
	case StatusOk:
		return protocol.StatusOk
	case StatusError:
		return protocol.StatusError
	case StatusFailed:
		return protocol.StatusFailed
	default:
		panic("queryobj: Pending status reached the wire")
	}
}

// Reset restores a Query to its post-allocation state so the owning pool
// can hand it back out for a new frame. Callers must ensure refcount is 0
// (i.e. Release has fully run) before calling Reset.
func (q *Query) Reset(opcode protocol.Opcode, worldID int32) {
	q.refcount.Store(1)
	q.status.Store(int32(StatusPending))
	q.code.Store(0)
	q.Opcode = opcode
	q.WorldID = worldID
	q.ReqLen = 0
	q.RespLen = 0
	q.done = make(chan struct{})
	q.once = sync.Once{}
}
