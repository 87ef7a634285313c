// Package queue provides the storage used by SPSC hand-off channels.
//
// Ring is an unbounded FIFO: Push never fails, it grows the backing
// buffer instead. It is deliberately unsynchronized.
//
// # Ring Safety (IMPORTANT)
//
// Ring is NOT safe for concurrent use, not even by one producer and one
// consumer. The owning structure must hold a lock around every call.
//
// Correct usage:
//   - Lock the owner's mutex
//   - Call Push, Pop, Len or Drain
//   - Unlock before signalling any waiter
package queue

// Queue is an unbounded FIFO used as channel storage.
//
// Implementations never block: Push always accepts, Pop returns false if
// empty.
type Queue[T any] interface {
	// Push adds an item to the tail of the queue.
	// Unbounded queues always return true.
	Push(T) bool

	// Pop removes and returns the item at the head of the queue.
	// Returns false if the queue is empty.
	Pop() (T, bool)

	// Len returns the number of queued items.
	Len() int
}

var _ Queue[int] = (*Ring[int])(nil)

// Drain pops every item of q in FIFO order, passing each to fn, and returns
// how many were removed. fn may be nil.
func Drain[T any](q Queue[T], fn func(T)) int {
	n := 0
	for {
		v, ok := q.Pop()
		if !ok {
			return n
		}
		if fn != nil {
			fn(v)
		}
		n++
	}
}
