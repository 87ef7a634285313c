package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readHeaderTimeout = 10 * time.Second

// Channel is the read-only view of a channel that /health reports.
// *spsc.Channel of any element type satisfies it.
type Channel interface {
	Len() int
	Closed() bool
}

// ChannelState is one channel's entry in the /health response.
type ChannelState struct {
	Name   string `json:"name"`
	Depth  int    `json:"depth"`
	Closed bool   `json:"closed"`
}

// Health is the /health response body.
type Health struct {
	Status   string         `json:"status"`
	Channels []ChannelState `json:"channels"`
}

// Server exposes /metrics for Prometheus and /health with the depth and
// closed state of every tracked channel.
type Server struct {
	httpServer *http.Server

	mu       sync.Mutex
	channels map[string]Channel
}

// NewServer creates a metrics server listening on addr (e.g. ":9090").
// It does not listen until Start.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	s := &Server{channels: make(map[string]Channel)}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Track adds ch to the /health report under name, replacing any channel
// tracked under the same name.
func (s *Server) Track(name string, ch Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[name] = ch
}

// Snapshot returns the current state of every tracked channel, sorted by
// name.
func (s *Server) Snapshot() Health {
	s.mu.Lock()
	states := make([]ChannelState, 0, len(s.channels))
	for name, ch := range s.channels {
		states = append(states, ChannelState{
			Name:   name,
			Depth:  ch.Len(),
			Closed: ch.Closed(),
		})
	}
	s.mu.Unlock()

	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return Health{Status: "ok", Channels: states}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Snapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Start serves in a background goroutine. The returned channel yields a
// listen error, if any, and is closed when the server stops.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve metrics on %s: %w", s.httpServer.Addr, err)
		}
	}()
	return errCh
}

// Shutdown stops the server gracefully, waiting until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
