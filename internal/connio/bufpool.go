package connio

import "sync"

// BufPool is a pool of reusable []byte buffers, grounded on the teacher's
// internal/login.BytePool: a sync.Pool with a fixed default capacity,
// growing past it falls back to a fresh allocation instead of pooling a
// too-small buffer.
type BufPool struct {
	pool sync.Pool
}

// NewBufPool creates a pool whose buffers default to defaultCap bytes.
func NewBufPool(defaultCap int) *BufPool {
	p := &BufPool{}
	p.pool.New = func() any {
		return make([]byte, 0, defaultCap)
	}
	return p
}

// Get returns a slice of length size, from the pool when it fits.
func (p *BufPool) Get(size int) []byte {
	b := p.pool.Get().([]byte)
	if cap(b) < size {
		p.pool.Put(b)
		return make([]byte, size)
	}
	b = b[:size]
	clear(b)
	return b
}

// Put returns b to the pool for reuse.
func (p *BufPool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:0])
}
