package relay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/spsc-handoff/internal/spsc"
)

// BounceConfig configures Bounce.
type BounceConfig struct {
	// Rounds is the number of round trips; the counter ends at 2*Rounds.
	Rounds int
	Log    *zap.SugaredLogger
	// Observer, if set, returns the observer for channel "a" or "b".
	Observer func(name string) spsc.Observer
	// Track, if set, is handed each channel after it is created.
	Track func(name string, ch *spsc.Channel[int])
}

// BounceResult reports how a Bounce ended.
type BounceResult struct {
	Final int   // last value seen by either side
	X     Stats // reads b, writes a
	Y     Stats // reads a, writes b
}

// Bounce passes an integer between two goroutines over two channels,
// incrementing it on every hop. X reads channel b and writes channel a; Y
// reads a and writes b. Y seeds b with 0. The side that produces 2*Rounds
// closes its writer, the other side stops forwarding when it receives it, and
// both readers then drain to closed.
//
// Cancelling ctx closes both writers; Bounce then returns ctx's error.
func Bounce(ctx context.Context, cfg BounceConfig) (BounceResult, error) {
	if cfg.Rounds <= 0 {
		return BounceResult{}, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	limit := 2 * cfg.Rounds

	a := newIntChannel(cfg.Observer, "a")
	b := newIntChannel(cfg.Observer, "b")
	if cfg.Track != nil {
		cfg.Track("a", a)
		cfg.Track("b", b)
	}

	ra, err := a.Reader()
	if err != nil {
		return BounceResult{}, fmt.Errorf("failed to attach reader a: %w", err)
	}
	wa, err := a.Writer()
	if err != nil {
		return BounceResult{}, fmt.Errorf("failed to attach writer a: %w", err)
	}
	rb, err := b.Reader()
	if err != nil {
		return BounceResult{}, fmt.Errorf("failed to attach reader b: %w", err)
	}
	wb, err := b.Writer()
	if err != nil {
		return BounceResult{}, fmt.Errorf("failed to attach writer b: %w", err)
	}

	var res BounceResult
	var finalX, finalY int

	g, gctx := errgroup.WithContext(ctx)
	finished := make(chan struct{})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			log.Debugw("bounce cancelled, closing writers")
			wa.Close()
			wb.Close()
			return gctx.Err()
		case <-finished:
			return nil
		}
	})

	g.Go(func() error {
		defer close(finished)

		var relays errgroup.Group
		relays.Go(func() error {
			res.X = Run(rb, wa, counterStep(limit, &finalX, log.With("side", "x")))
			return nil
		})
		relays.Go(func() error {
			if !wb.Push(0) {
				log.Debugw("seed rejected", "side", "y")
			}
			res.Y = Run(ra, wb, counterStep(limit, &finalY, log.With("side", "y")))
			return nil
		})
		return relays.Wait()
	})

	waitErr := g.Wait()
	res.Final = max(finalX, finalY)
	if err := settle(res, limit, waitErr); err != nil {
		return res, err
	}

	log.Infow("bounce finished",
		"final", res.Final,
		"relayedX", res.X.Relayed,
		"relayedY", res.Y.Relayed,
	)
	return res, nil
}

// complete reports whether the counter reached limit, both readers drained
// and no hop was rejected or dropped on the way.
func (r BounceResult) complete(limit int) bool {
	return r.Final == limit &&
		r.X.Drained && r.Y.Drained &&
		r.X.Rejected+r.Y.Rejected == 0 &&
		r.X.Dropped+r.Y.Dropped == 0
}

// settle maps the group error to Bounce's result. A cancellation that lost
// the race against a finished bounce is not an error.
func settle(res BounceResult, limit int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if res.complete(limit) {
			return nil
		}
		return err
	}
	return fmt.Errorf("bounce failed: %w", err)
}

// counterStep increments until limit. The side that reaches limit forwards it
// and closes; the side that receives limit records it and stops.
func counterStep(limit int, final *int, log *zap.SugaredLogger) Step[int] {
	return func(v int) (int, Action) {
		*final = v
		if v >= limit {
			log.Debugw("received final value", "value", v)
			return v, Stop
		}

		next := v + 1
		*final = next
		log.Debugw("hop", "in", v, "out", next)
		if next >= limit {
			return next, Last
		}
		return next, Forward
	}
}

func newIntChannel(observer func(string) spsc.Observer, name string) *spsc.Channel[int] {
	if observer == nil {
		return spsc.New[int]()
	}
	return spsc.New(spsc.WithObserver[int](observer(name)))
}
