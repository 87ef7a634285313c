package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const (
	cmdSimple = "simple"
	cmdBounce = "bounce"
	cmdBench  = "bench"
)

// Config holds all configuration for the spsc commands
type Config struct {
	// Application settings
	Verbose     bool
	MetricsAddr string

	// simple
	Count int

	// bounce
	Rounds int

	// bench
	Iterations int
	Size       int
}

// buildConfig reads the flags of the running command and validates the ones
// it uses
func buildConfig(c *cli.Context) (*Config, error) {
	cfg := &Config{
		Verbose:     c.Bool("verbose"),
		MetricsAddr: c.String("metrics-addr"),
		Count:       c.Int("count"),
		Rounds:      c.Int("rounds"),
		Iterations:  c.Int("iterations"),
		Size:        c.Int("size"),
	}

	if err := cfg.validate(c.Command.Name); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(command string) error {
	switch command {
	case cmdSimple:
		if c.Count < 0 {
			return fmt.Errorf("count must be non-negative, got %d", c.Count)
		}
	case cmdBounce:
		if c.Rounds <= 0 {
			return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
		}
	case cmdBench:
		if c.Iterations <= 0 {
			return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
		}
		if c.Size <= 0 {
			return fmt.Errorf("size must be positive, got %d", c.Size)
		}
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// MetricsEnabled reports whether a metrics server was requested
func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}
