package spsc

import (
	"runtime"
	"sync/atomic"
)

// Reader is the consuming side of a Channel.
//
// SPSC CONTRACT: Only ONE goroutine may call Pop() at a time.
type Reader[T any] struct {
	ch      *Channel[T]
	cleanup runtime.Cleanup

	// SPSC guard: detect concurrent misuse
	popActive atomic.Uint32
	released  atomic.Bool
}

// Pop removes and returns the value at the head of the channel.
//
// Pop blocks while the channel is open and empty. It returns false once the
// channel is closed and every queued value has been delivered; after that
// every call returns false immediately.
func (r *Reader[T]) Pop() (T, bool) {
	// SPSC guard: panic if concurrent Pop detected
	if !r.popActive.CompareAndSwap(0, 1) {
		panic("spsc: concurrent Pop on Reader - only one consumer allowed")
	}
	defer r.popActive.Store(0)

	if r.released.Load() {
		panic("spsc: Pop on released Reader")
	}

	return r.ch.pop()
}

// Release detaches the Reader. Once both the Reader is released and the
// Writer is closed, undelivered values are discarded.
//
// Safe to call multiple times; subsequent calls are no-ops.
func (r *Reader[T]) Release() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	r.cleanup.Stop()
	r.ch.releaseReader()
}
