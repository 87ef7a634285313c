// Package metrics exports spsc channel events to Prometheus.
//
// Each channel gets its own Metrics, registered under a constant
// channel=<name> label so several channels can share one registry.
// Server exposes the registry at /metrics and the state of tracked channels at
// /health.
package metrics
