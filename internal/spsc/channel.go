package spsc

import (
	"runtime"
	"sync"

	"github.com/randomizedcoder/spsc-handoff/internal/queue"
)

// Channel is the shared state behind one Reader and one Writer.
//
// All fields below mu are guarded by it. The lock is only held for O(1)
// bookkeeping; Pop releases it while waiting on cond.
type Channel[T any] struct {
	mu   sync.Mutex
	cond sync.Cond

	storage queue.Queue[T]

	closed           bool
	readerRegistered bool
	writerRegistered bool
	readerReleased   bool
	tornDown         bool

	discard  func(T)
	observer Observer
}

// New creates an empty, open Channel with no Reader or Writer attached.
func New[T any](opts ...Option[T]) *Channel[T] {
	cfg := config[T]{
		capacity: DefaultCapacity,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Channel[T]{
		storage:  queue.NewRing[T](cfg.capacity),
		discard:  cfg.discard,
		observer: cfg.observer,
	}
	c.cond.L = &c.mu
	return c
}

// AttachReader registers the Reader of ch. It is equivalent to ch.Reader().
func AttachReader[T any](ch *Channel[T]) (*Reader[T], error) {
	return ch.Reader()
}

// AttachWriter registers the Writer of ch. It is equivalent to ch.Writer().
func AttachWriter[T any](ch *Channel[T]) (*Writer[T], error) {
	return ch.Writer()
}

// Reader registers and returns the channel's only Reader.
// Returns ErrReaderAlreadyExists if a Reader was attached before, even one
// that has since been released.
func (c *Channel[T]) Reader() (*Reader[T], error) {
	c.mu.Lock()
	if c.readerRegistered {
		c.mu.Unlock()
		return nil, ErrReaderAlreadyExists
	}
	c.readerRegistered = true
	c.mu.Unlock()

	r := &Reader[T]{ch: c}
	r.cleanup = runtime.AddCleanup(r, func(ch *Channel[T]) { ch.releaseReader() }, c)
	return r, nil
}

// Writer registers and returns the channel's only Writer.
// Returns ErrWriterAlreadyExists if a Writer was attached before.
func (c *Channel[T]) Writer() (*Writer[T], error) {
	c.mu.Lock()
	if c.writerRegistered {
		c.mu.Unlock()
		return nil, ErrWriterAlreadyExists
	}
	c.writerRegistered = true
	c.mu.Unlock()

	w := &Writer[T]{ch: c}
	// An unreachable Writer closes the channel.
	w.cleanup = runtime.AddCleanup(w, func(ch *Channel[T]) { ch.close() }, c)
	return w, nil
}

// Len returns the number of queued values.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storage.Len()
}

// Closed reports whether the Writer has closed the channel. Values may still
// be queued.
func (c *Channel[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel[T]) push(v T) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.observer.Rejected()
		return false
	}
	c.storage.Push(v)
	depth := c.storage.Len()
	c.mu.Unlock()

	// The reader checks the queue under mu before every Wait, so signalling
	// after unlock cannot lose the wake-up.
	c.cond.Signal()

	c.observer.Pushed()
	c.observer.Depth(depth)
	return true
}

func (c *Channel[T]) pop() (T, bool) {
	c.mu.Lock()
	for {
		if v, ok := c.storage.Pop(); ok {
			depth := c.storage.Len()
			c.mu.Unlock()

			c.observer.Delivered()
			c.observer.Depth(depth)
			return v, true
		}
		if c.closed {
			c.mu.Unlock()
			var zero T
			return zero, false
		}
		// Wakeups may be spurious; loop and re-check.
		c.cond.Wait()
	}
}

func (c *Channel[T]) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending, teardown := c.teardownLocked()
	c.mu.Unlock()

	// One reader, so one waiter at most.
	c.cond.Signal()

	c.observer.Closed()
	if teardown {
		c.discardAll(pending)
	}
}

func (c *Channel[T]) releaseReader() {
	c.mu.Lock()
	if c.readerReleased {
		c.mu.Unlock()
		return
	}
	c.readerReleased = true
	pending, teardown := c.teardownLocked()
	c.mu.Unlock()

	if teardown {
		c.discardAll(pending)
	}
}

// teardownLocked empties storage once both handles are gone. It must be
// called with mu held.
func (c *Channel[T]) teardownLocked() ([]T, bool) {
	if c.tornDown || !c.closed || !c.readerReleased {
		return nil, false
	}
	c.tornDown = true

	pending := make([]T, 0, c.storage.Len())
	queue.Drain(c.storage, func(v T) {
		pending = append(pending, v)
	})
	return pending, true
}

func (c *Channel[T]) discardAll(pending []T) {
	if c.discard != nil {
		for _, v := range pending {
			c.discard(v)
		}
	}
	c.observer.Discarded(len(pending))
	c.observer.Depth(0)
}
