package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "spsc"

	// ChannelLabel distinguishes channels sharing one registry.
	ChannelLabel = "channel"
)

// Metrics records channel events in Prometheus. It implements spsc.Observer;
// one Metrics instance belongs to one channel.
type Metrics struct {
	pushed    prometheus.Counter
	rejected  prometheus.Counter
	delivered prometheus.Counter
	closed    prometheus.Counter
	discarded prometheus.Counter
	depth     prometheus.Gauge
}

// New creates a Metrics instance for the named channel and registers it with
// the provided registerer. Returns an error if any registration fails, for
// example when the same name is registered twice.
func New(reg prometheus.Registerer, name string) (*Metrics, error) {
	reg = prometheus.WrapRegistererWith(prometheus.Labels{ChannelLabel: name}, reg)

	m := &Metrics{
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pushed_total",
			Help:      "Total values accepted by Push",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rejected_total",
			Help:      "Total values refused because the channel was closed",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "delivered_total",
			Help:      "Total values handed to the reader by Pop",
		}),
		closed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "closed_total",
			Help:      "Number of times the channel was closed (0 or 1)",
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "discarded_total",
			Help:      "Total undelivered values released at teardown",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "depth",
			Help:      "Number of values queued and not yet delivered",
		}),
	}

	collectors := []prometheus.Collector{
		m.pushed,
		m.rejected,
		m.delivered,
		m.closed,
		m.discarded,
		m.depth,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			// Leave the registry as it was so the name can be retried.
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, fmt.Errorf("failed to register metrics for channel %s: %w", name, err)
		}
	}

	return m, nil
}

func (m *Metrics) Pushed() {
	m.pushed.Inc()
}

func (m *Metrics) Rejected() {
	m.rejected.Inc()
}

func (m *Metrics) Delivered() {
	m.delivered.Inc()
}

func (m *Metrics) Closed() {
	m.closed.Inc()
}

// Discarded adds n undelivered values. Zero is a valid teardown outcome and
// is recorded as no change.
func (m *Metrics) Discarded(n int) {
	m.discarded.Add(float64(n))
}

func (m *Metrics) Depth(n int) {
	m.depth.Set(float64(n))
}
