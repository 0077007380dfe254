// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
//
// BytePool hands out reusable scratch buffers for the buffered stream's
// non-lookahead read path. Grounded on the teacher's pool/bytepool.go,
// trimmed of the NUMA-aware branch (no affinity concern in this spec) down
// to the sync.Pool fallback it always had.

package pool

import "sync"

// BytePool pools []byte slices of a fixed size.
type BytePool struct {
	size int
	pool sync.Pool
}

// NewBytePool constructs a pool of buffers of exactly size bytes.
func NewBytePool(size int) *BytePool {
	p := &BytePool{size: size}
	p.pool.New = func() any {
		return make([]byte, p.size)
	}
	return p
}

// Get returns a buffer of p's fixed size, reused if available.
func (p *BytePool) Get() []byte {
	return p.pool.Get().([]byte)
}

// Put returns buf to the pool for reuse. Buffers of the wrong size are
// dropped rather than pooled.
func (p *BytePool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	p.pool.Put(buf[:p.size])
}
