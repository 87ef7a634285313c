package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/spsc-handoff/internal/bench"
	"github.com/randomizedcoder/spsc-handoff/internal/metrics"
	"github.com/randomizedcoder/spsc-handoff/internal/relay"
	"github.com/randomizedcoder/spsc-handoff/internal/spsc"
	"github.com/randomizedcoder/spsc-handoff/internal/utils"
)

const metricsShutdownTimeout = 5 * time.Second

// env is what every command needs after flag parsing
type env struct {
	cfg    *Config
	sugar  *zap.SugaredLogger
	reg    *prometheus.Registry // nil when metrics are disabled
	server *metrics.Server      // nil when metrics are disabled
}

// setup builds the config and logger, and starts the metrics server if one
// was requested. The returned cleanup must always be called.
func setup(c *cli.Context) (*env, func(), error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger(c.Command.Name, cfg.Verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	sugar.Infow("config",
		"command", c.Command.Name,
		"verbose", cfg.Verbose,
		"metricsAddr", cfg.MetricsAddr,
		"count", cfg.Count,
		"rounds", cfg.Rounds,
		"iterations", cfg.Iterations,
		"size", cfg.Size,
	)

	e := &env{cfg: cfg, sugar: sugar}
	cleanup := func() {
		sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors
	}

	if !cfg.MetricsEnabled() {
		return e, cleanup, nil
	}

	e.reg = prometheus.NewRegistry()
	server := metrics.NewServer(cfg.MetricsAddr, e.reg)
	e.server = server
	errCh := server.Start()
	sugar.Infof("metrics server listening on http://%s/metrics", cfg.MetricsAddr)

	go func() {
		if err := <-errCh; err != nil {
			sugar.Errorw("metrics server failed", "error", err)
		}
	}()

	return e, func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			sugar.Warnw("metrics server shutdown", "error", err)
		}
		cleanup()
	}, nil
}

// observer returns the Prometheus observer for the named channel, or nil
// when metrics are disabled.
func (e *env) observer(name string) (spsc.Observer, error) {
	if e.reg == nil {
		return nil, nil
	}
	m, err := metrics.New(e.reg, name)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// track reports ch on /health when metrics are enabled.
func (e *env) track(name string, ch metrics.Channel) {
	if e.server == nil {
		return
	}
	e.server.Track(name, ch)
}

func runSimple(c *cli.Context) error {
	e, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := e.observer(cmdSimple)
	if err != nil {
		return err
	}
	ch := spsc.New(spsc.WithObserver[int](obs))
	e.track(cmdSimple, ch)

	var got []int
	g := new(errgroup.Group)

	g.Go(func() error {
		w, err := spsc.AttachWriter(ch)
		if err != nil {
			return fmt.Errorf("failed to attach writer: %w", err)
		}
		defer w.Close()

		for i := 0; i < e.cfg.Count; i++ {
			if ctx.Err() != nil {
				e.sugar.Infow("writer stopping early", "pushed", i)
				return nil
			}
			if !w.Push(i) {
				return nil
			}
		}
		return nil
	})

	g.Go(func() error {
		r, err := spsc.AttachReader(ch)
		if err != nil {
			return fmt.Errorf("failed to attach reader: %w", err)
		}
		defer r.Release()

		for {
			v, ok := r.Pop()
			if !ok {
				e.sugar.Debugw("channel closed and drained", "received", len(got))
				return nil
			}
			e.sugar.Debugw("received", "value", v)
			fmt.Println(v)
			got = append(got, v)
		}
	})

	if err := g.Wait(); err != nil {
		e.sugar.Errorw("simple failed", "error", err)
		return err
	}

	e.sugar.Infow("simple finished", "values", formatInts(got))
	return nil
}

func runBounce(c *cli.Context) error {
	e, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	observers := make(map[string]spsc.Observer, 2)
	for _, name := range []string{"a", "b"} {
		obs, err := e.observer(name)
		if err != nil {
			return err
		}
		observers[name] = obs
	}

	res, err := relay.Bounce(ctx, relay.BounceConfig{
		Rounds: e.cfg.Rounds,
		Log:    e.sugar,
		Observer: func(name string) spsc.Observer {
			return observers[name]
		},
		Track: func(name string, ch *spsc.Channel[int]) {
			e.track(name, ch)
		},
	})
	if errors.Is(err, context.Canceled) {
		e.sugar.Infow("exiting due to context cancellation", "final", res.Final)
		return nil
	}
	if err != nil {
		e.sugar.Errorw("bounce failed", "error", err)
		return err
	}

	fmt.Printf("final value: %d (expected %d)\n", res.Final, 2*e.cfg.Rounds)
	return nil
}

func runBench(c *cli.Context) error {
	e, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	obs, err := e.observer(cmdBench)
	if err != nil {
		return err
	}

	fmt.Printf("Benchmarking SPSC hand-off (%d iterations, size=%d)\n", e.cfg.Iterations, e.cfg.Size)
	fmt.Println("─────────────────────────────────────────────────")

	results, err := bench.All(e.cfg.Iterations, e.cfg.Size, spsc.WithObserver[int](obs))
	if err != nil {
		e.sugar.Errorw("bench failed", "error", err)
		return err
	}

	fmt.Printf("\nResults (producer → consumer per item):\n")
	for _, r := range results {
		fmt.Printf("  %-18s %v (%.2f ns/op)\n", r.Name+":", r.Elapsed, r.PerOp())
	}

	fmt.Printf("\nThroughput:\n")
	for _, r := range results {
		fmt.Printf("  %-18s %.2f M ops/sec\n", r.Name+":", r.OpsPerSec())
	}
	fmt.Printf("\n  (go-lock-free-ring uses a fixed capacity of %d)\n", bench.RingCapacity)
	return nil
}

func formatInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
