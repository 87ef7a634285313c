// Package bench measures two-goroutine hand-off throughput.
//
// It compares three transports on the same producer/consumer loop:
//   - Handoff: spsc.Channel (mutex + condition variable, unbounded)
//   - Chan: buffered Go channel (bounded, blocking send)
//   - ShardedRing: go-lock-free-ring with one shard (bounded, spinning)
//
// These runs are more representative of pipeline cost than isolated
// Push/Pop micro-benchmarks, since they include wake-ups and contention
// between the two sides.
package bench

import (
	"fmt"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"

	"github.com/randomizedcoder/spsc-handoff/internal/spsc"
)

// RingCapacity is the fixed capacity used for the sharded ring.
const RingCapacity = 1024

// Result is the outcome of one run.
type Result struct {
	Name    string
	Items   int
	Elapsed time.Duration
}

// PerOp returns the nanoseconds spent per item.
func (r Result) PerOp() float64 {
	if r.Items == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Items)
}

// OpsPerSec returns throughput in millions of items per second.
func (r Result) OpsPerSec() float64 {
	perOp := r.PerOp()
	if perOp == 0 {
		return 0
	}
	return 1000 / perOp
}

// Handoff pushes n items through a spsc.Channel and waits until the reader
// has popped all of them.
func Handoff(n, size int, opts ...spsc.Option[int]) (Result, error) {
	opts = append([]spsc.Option[int]{spsc.WithInitialCapacity[int](size)}, opts...)
	ch := spsc.New(opts...)
	r, err := ch.Reader()
	if err != nil {
		return Result{}, fmt.Errorf("failed to attach reader: %w", err)
	}
	w, err := ch.Writer()
	if err != nil {
		return Result{}, fmt.Errorf("failed to attach writer: %w", err)
	}

	received := make(chan int, 1)
	start := time.Now()

	// Consumer (single consumer - SPSC contract)
	go func() {
		defer r.Release()
		got := 0
		for {
			if _, ok := r.Pop(); !ok {
				received <- got
				return
			}
			got++
		}
	}()

	// Producer (single producer - SPSC contract)
	for i := 0; i < n; i++ {
		w.Push(i)
	}
	w.Close()
	got := <-received

	elapsed := time.Since(start)
	if got != n {
		return Result{}, fmt.Errorf("handoff delivered %d of %d items", got, n)
	}
	return Result{Name: "spsc.Channel", Items: n, Elapsed: elapsed}, nil
}

// Chan pushes n items through a buffered Go channel of the given size.
func Chan(n, size int) Result {
	ch := make(chan int, size)
	done := make(chan struct{})
	start := time.Now()

	go func() {
		defer close(done)
		for range ch {
		}
	}()

	for i := 0; i < n; i++ {
		ch <- i
	}
	close(ch)
	<-done

	return Result{Name: "chan", Items: n, Elapsed: time.Since(start)}
}

// ShardedRing writes n items into a single-shard go-lock-free-ring while a
// consumer goroutine polls it. The ring is bounded, so the producer spins
// whenever the consumer falls RingCapacity items behind; elapsed time is
// measured on the producer side.
func ShardedRing(n int) (Result, error) {
	r, err := ring.NewShardedRing(RingCapacity, 1)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create sharded ring: %w", err)
	}
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	go func() {
		defer close(consumerDone)
		for {
			select {
			case <-done:
				return
			default:
				r.TryRead()
			}
		}
	}()

	start := time.Now()
	for i := 0; i < n; i++ {
		for !r.Write(0, i) {
			// Spin until the consumer frees a slot
		}
	}
	elapsed := time.Since(start)

	close(done)
	<-consumerDone

	return Result{Name: "go-lock-free-ring", Items: n, Elapsed: elapsed}, nil
}

// All runs every transport with the same parameters, in a fixed order.
func All(n, size int, opts ...spsc.Option[int]) ([]Result, error) {
	h, err := Handoff(n, size, opts...)
	if err != nil {
		return nil, err
	}
	sr, err := ShardedRing(n)
	if err != nil {
		return nil, err
	}
	return []Result{h, Chan(n, size), sr}, nil
}
