// Package relay drives spsc channels from the caller side.
//
// Run is the read-transform-write loop a pipeline stage runs on its own
// goroutine. Bounce wires two stages into a ring and passes a counter
// around it until it reaches a target.
package relay

import (
	"github.com/randomizedcoder/spsc-handoff/internal/spsc"
)

// Action tells Run what to do with a transformed value.
type Action int

const (
	// Forward pushes the value downstream and keeps going.
	Forward Action = iota
	// Last pushes the value downstream, then closes the downstream writer.
	Last
	// Stop closes the downstream writer without pushing the value.
	Stop
)

// Step transforms one value read from upstream.
type Step[T any] func(T) (T, Action)

// Stats summarizes one Run.
type Stats struct {
	Relayed  int  // values pushed downstream
	Dropped  int  // values read after downstream was closed
	Rejected int  // pushes refused because downstream was already closed
	Drained  bool // upstream reported closed and empty
}

// Run pops from r until it is closed and drained, passing each value through
// step and pushing the result to w.
//
// Once w is closed, by step or by someone else, later values are still read
// so the upstream writer is never left with a reader that stopped early; they
// are counted as Dropped. Run always closes w and releases r before
// returning.
func Run[T any](r *spsc.Reader[T], w *spsc.Writer[T], step Step[T]) Stats {
	defer r.Release()
	defer w.Close()

	var stats Stats
	open := true
	for {
		v, ok := r.Pop()
		if !ok {
			stats.Drained = true
			return stats
		}
		if !open {
			stats.Dropped++
			continue
		}

		out, action := step(v)
		if action == Stop {
			w.Close()
			open = false
			continue
		}

		if !w.Push(out) {
			stats.Rejected++
			open = false
			continue
		}
		stats.Relayed++

		if action == Last {
			w.Close()
			open = false
		}
	}
}
