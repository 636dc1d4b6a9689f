package queryobj

import (
	"sync"

	"github.com/tibia/querymanager/internal/protocol"
)

// Pool recycles Query objects sized to a fixed buffer size, the same
// sync.Pool-backed shape as the teacher's gameserver.BytePool.
type Pool struct {
	bufSize int
	pool    sync.Pool
}

// NewPool creates a Query pool whose buffers are bufSize bytes — the
// configured QueryBufferSize, large enough for the biggest request or
// response (spec.md §3).
func NewPool(bufSize int) *Pool {
	p := &Pool{bufSize: bufSize}
	p.pool.New = func() any {
		return New(bufSize, nil)
	}
	return p
}

// Get returns a Query ready for a fresh frame, with refcount 1.
func (p *Pool) Get(opcode protocol.Opcode, worldID int32) *Query {
	q := p.pool.Get().(*Query)
	q.Reset(opcode, worldID)
	q.release = p.put
	return q
}

func (p *Pool) put(q *Query) {
	p.pool.Put(q)
}
