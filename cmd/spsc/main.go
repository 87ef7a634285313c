// Command spsc exercises the single-producer single-consumer hand-off channel.
//
// Usage:
//
//	go run ./cmd/spsc simple -n 8
//	go run ./cmd/spsc bounce -r 128
//	go run ./cmd/spsc bench -n 10000000 -s 1024
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "spsc",
		Usage: "Hand values between two goroutines over an SPSC channel",
		Commands: []*cli.Command{
			{
				Name:   cmdSimple,
				Usage:  "Push 0..n-1 from a writer goroutine and print them from a reader goroutine",
				Flags:  simpleFlags(),
				Action: runSimple,
			},
			{
				Name:   cmdBounce,
				Usage:  "Bounce a counter between two goroutines over two channels",
				Flags:  bounceFlags(),
				Action: runBounce,
			},
			{
				Name:   cmdBench,
				Usage:  "Compare hand-off throughput of spsc, Go channels and go-lock-free-ring",
				Flags:  benchFlags(),
				Action: runBench,
			},
		},
	}
}
