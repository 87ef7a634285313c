package spsc

import (
	"runtime"
	"sync/atomic"
)

// Writer is the producing side of a Channel.
//
// SPSC CONTRACT: Only ONE goroutine may call Push() at a time. Close may be
// called from any goroutine.
type Writer[T any] struct {
	ch      *Channel[T]
	cleanup runtime.Cleanup

	// SPSC guard: detect concurrent misuse
	pushActive atomic.Uint32
	closed     atomic.Bool
}

// Push appends v to the channel and wakes the Reader.
//
// Returns false, dropping v, if the channel is closed. Ownership of v passes
// to the channel on success. Push never blocks on the Reader.
func (w *Writer[T]) Push(v T) bool {
	// SPSC guard: panic if concurrent Push detected
	if !w.pushActive.CompareAndSwap(0, 1) {
		panic("spsc: concurrent Push on Writer - only one producer allowed")
	}
	defer w.pushActive.Store(0)

	return w.ch.push(v)
}

// Close closes the channel. Queued values remain available to the Reader.
//
// Safe to call multiple times; subsequent calls are no-ops. Use
// defer w.Close() right after attaching so every exit path closes.
func (w *Writer[T]) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.cleanup.Stop()
	w.ch.close()
}
