package spsc

// DefaultCapacity is the initial number of storage slots.
const DefaultCapacity = 64

// Observer receives channel events. Calls are made outside the channel lock,
// from whichever goroutine performed the operation.
type Observer interface {
	// Pushed is called after a value was accepted.
	Pushed()
	// Rejected is called when Push found the channel closed.
	Rejected()
	// Delivered is called after Pop handed a value to the reader.
	Delivered()
	// Closed is called once, by the first Close.
	Closed()
	// Discarded is called at teardown with the number of undelivered values.
	Discarded(n int)
	// Depth reports the queue length after a Push, Pop or teardown. Reports
	// from the two sides are not ordered with respect to each other.
	Depth(n int)
}

type nopObserver struct{}

func (nopObserver) Pushed()       {}
func (nopObserver) Rejected()     {}
func (nopObserver) Delivered()    {}
func (nopObserver) Closed()       {}
func (nopObserver) Discarded(int) {}
func (nopObserver) Depth(int)     {}

type config[T any] struct {
	capacity int
	discard  func(T)
	observer Observer
}

// Option configures a Channel.
type Option[T any] func(*config[T])

// WithInitialCapacity sets the initial storage size. The storage still grows
// without bound.
func WithInitialCapacity[T any](n int) Option[T] {
	return func(c *config[T]) {
		c.capacity = n
	}
}

// WithDiscard sets the hook that receives every value still queued when the
// channel is torn down.
func WithDiscard[T any](fn func(T)) Option[T] {
	return func(c *config[T]) {
		c.discard = fn
	}
}

// WithObserver sets the event observer. A nil observer is ignored.
func WithObserver[T any](o Observer) Option[T] {
	return func(c *config[T]) {
		if o != nil {
			c.observer = o
		}
	}
}
