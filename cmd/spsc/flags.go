package main

import (
	"github.com/urfave/cli/v2"
)

// commonFlags returns the flags shared by every command
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"SPSC_VERBOSE"},
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Aliases: []string{"m"},
			Usage:   "Address to serve Prometheus metrics on (e.g. :9090); empty disables the server",
			EnvVars: []string{"SPSC_METRICS_ADDR"},
			Value:   "",
		},
	}
}

// simpleFlags returns the flags for the simple command
func simpleFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of values the writer pushes",
			EnvVars: []string{"SPSC_COUNT"},
			Value:   8,
		},
	)
}

// bounceFlags returns the flags for the bounce command
func bounceFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.IntFlag{
			Name:    "rounds",
			Aliases: []string{"r"},
			Usage:   "Number of round trips; the counter ends at twice this value",
			EnvVars: []string{"SPSC_ROUNDS"},
			Value:   128,
		},
	)
}

// benchFlags returns the flags for the bench command
func benchFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.IntFlag{
			Name:    "iterations",
			Aliases: []string{"n"},
			Usage:   "Number of items handed off per transport",
			EnvVars: []string{"SPSC_ITERATIONS"},
			Value:   10_000_000,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "Initial spsc capacity and Go channel buffer size",
			EnvVars: []string{"SPSC_SIZE"},
			Value:   1024,
		},
	)
}
