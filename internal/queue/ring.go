package queue

// Ring is an unbounded FIFO backed by a power-of-two circular buffer.
//
// WARNING: Ring does no synchronization of its own. Callers must serialize
// every method call, typically by holding the mutex of the structure that
// owns the ring.
//
// When the buffer is full, Push doubles it and copies the live items to the
// front of the new buffer, so insertion order survives the wrap point.
type Ring[T any] struct {
	buf  []T
	mask uint64

	head uint64 // Next slot to write; advanced by Push
	tail uint64 // Next slot to read; advanced by Pop
}

// NewRing creates a Ring with the specified initial size.
// Size will be rounded up to the next power of 2 (minimum 1).
func NewRing[T any](size int) *Ring[T] {
	n := uint64(1)
	for n < uint64(max(size, 1)) {
		n <<= 1
	}

	return &Ring[T]{
		buf:  make([]T, n),
		mask: n - 1,
	}
}

// Push appends an item to the tail of the queue.
// It always returns true; the ring grows instead of rejecting.
func (r *Ring[T]) Push(v T) bool {
	if r.head-r.tail == uint64(len(r.buf)) {
		r.grow()
	}

	r.buf[r.head&r.mask] = v
	r.head++

	return true
}

// Pop removes and returns the oldest item.
// Returns false if the queue is empty.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.tail == r.head {
		return zero, false
	}

	i := r.tail & r.mask
	v := r.buf[i]
	// Don't pin the value after handing it over.
	r.buf[i] = zero
	r.tail++

	return v, true
}

// Len returns the number of queued items.
func (r *Ring[T]) Len() int {
	return int(r.head - r.tail)
}

// Cap returns the current size of the backing buffer.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

func (r *Ring[T]) grow() {
	n := r.Len()
	buf := make([]T, len(r.buf)<<1)

	for i := 0; i < n; i++ {
		buf[i] = r.buf[(r.tail+uint64(i))&r.mask]
	}

	r.buf = buf
	r.mask = uint64(len(buf)) - 1
	r.tail = 0
	r.head = uint64(n)
}
