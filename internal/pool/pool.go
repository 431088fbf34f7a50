// Package pool recycles fixed-size request buffers across dispatched
// operations, bounding transient allocation under high fan-out.
package pool

// BufferPool hands out request buffers of a fixed size. Get never blocks:
// when the pool is empty a fresh buffer is allocated. Put never blocks:
// when the pool is full the buffer is left for the garbage collector.
type BufferPool struct {
	size int
	bufs chan []byte
}

// NewBufferPool creates a pool of bufSize-byte buffers retaining at most
// capacity of them between uses.
func NewBufferPool(bufSize, capacity int) *BufferPool {
	if bufSize <= 0 {
		bufSize = 1
	}
	if capacity <= 0 {
		capacity = 64
	}
	return &BufferPool{
		size: bufSize,
		bufs: make(chan []byte, capacity),
	}
}

// Get retrieves a buffer from the pool or allocates a new one.
func (p *BufferPool) Get() []byte {
	select {
	case b := <-p.bufs:
		return b
	default:
		return make([]byte, p.size)
	}
}

// Put returns a buffer for reuse. Buffers of the wrong size are discarded.
func (p *BufferPool) Put(b []byte) {
	if cap(b) < p.size {
		return
	}
	select {
	case p.bufs <- b[:p.size]:
	default:
	}
}

// BufferSize reports the size of buffers this pool hands out.
func (p *BufferPool) BufferSize() int { return p.size }
