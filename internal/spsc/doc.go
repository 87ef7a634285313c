// Package spsc provides a single-producer single-consumer hand-off channel.
//
// A Channel is an unbounded FIFO shared by exactly one Writer and exactly one
// Reader. The Writer pushes values and eventually closes the channel; the
// Reader blocks in Pop until a value arrives or the channel is closed and
// drained.
//
// # Roles (IMPORTANT)
//
// Each Channel accepts one Reader and one Writer for its whole lifetime.
// Attaching a second one fails with ErrReaderAlreadyExists or
// ErrWriterAlreadyExists. A handle must be used by one goroutine at a time;
// concurrent Push on one Writer or concurrent Pop on one Reader panics.
//
// Correct usage:
//
//	ch := spsc.New[int]()
//
//	go func() {
//		w, err := ch.Writer()
//		if err != nil {
//			return
//		}
//		defer w.Close()
//		for i := 0; i < 8; i++ {
//			w.Push(i)
//		}
//	}()
//
//	r, err := ch.Reader()
//	if err != nil {
//		return
//	}
//	defer r.Release()
//	for {
//		v, ok := r.Pop()
//		if !ok {
//			break // closed and drained
//		}
//		use(v)
//	}
//
// # Shutdown
//
// Close is the only cancellation signal. Values queued before Close stay
// available to Pop; once they are drained Pop reports closed without
// blocking, forever. Push after Close returns false.
//
// When both handles have been released, values still queued are passed to
// the WithDiscard hook exactly once.
package spsc
