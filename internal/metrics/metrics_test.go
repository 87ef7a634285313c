package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/spsc-handoff/internal/spsc"
)

var _ spsc.Observer = (*Metrics)(nil)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := New(reg, "a")
	require.NoError(t, err)
	require.NotNil(t, m)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, metricFamilies, 6)
}

func TestNew_TwoChannelsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := New(reg, "a")
	require.NoError(t, err)
	_, err = New(reg, "b")
	require.NoError(t, err)

	_, err = New(reg, "a")
	require.Error(t, err)
}

// A registration that fails part way leaves nothing behind.
func TestNew_FailedRegistrationRollsBack(t *testing.T) {
	reg := prometheus.NewRegistry()
	blocker := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   Namespace,
		Name:        "depth",
		Help:        "conflicting help text",
		ConstLabels: prometheus.Labels{ChannelLabel: "x"},
	})
	require.NoError(t, reg.Register(blocker))

	_, err := New(reg, "x")
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "spsc_depth", families[0].GetName())

	require.True(t, reg.Unregister(blocker))
	_, err = New(reg, "x")
	require.NoError(t, err)
}

func TestMetrics_Events(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, "test")
	require.NoError(t, err)

	m.Pushed()
	m.Pushed()
	m.Pushed()
	m.Delivered()
	m.Rejected()
	m.Closed()
	m.Discarded(2)
	m.Discarded(0)
	m.Depth(2)

	require.Equal(t, float64(3), testutil.ToFloat64(m.pushed))
	require.Equal(t, float64(1), testutil.ToFloat64(m.delivered))
	require.Equal(t, float64(1), testutil.ToFloat64(m.rejected))
	require.Equal(t, float64(1), testutil.ToFloat64(m.closed))
	require.Equal(t, float64(2), testutil.ToFloat64(m.discarded))
	require.Equal(t, float64(2), testutil.ToFloat64(m.depth))
}

// Drives a real channel through the observer hook.
func TestMetrics_WithChannel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, "live")
	require.NoError(t, err)

	ch := spsc.New(spsc.WithObserver[string](m))
	r, err := ch.Reader()
	require.NoError(t, err)
	w, err := ch.Writer()
	require.NoError(t, err)

	require.True(t, w.Push("a"))
	require.True(t, w.Push("b"))
	require.True(t, w.Push("c"))
	_, ok := r.Pop()
	require.True(t, ok)

	w.Close()
	require.False(t, w.Push("d"))
	r.Release()

	require.Equal(t, float64(3), testutil.ToFloat64(m.pushed))
	require.Equal(t, float64(1), testutil.ToFloat64(m.delivered))
	require.Equal(t, float64(1), testutil.ToFloat64(m.rejected))
	require.Equal(t, float64(1), testutil.ToFloat64(m.closed))
	require.Equal(t, float64(2), testutil.ToFloat64(m.discarded))
	require.Equal(t, float64(0), testutil.ToFloat64(m.depth))
}

func TestServer_Handlers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, "srv")
	require.NoError(t, err)

	open := spsc.New(spsc.WithObserver[int](m))
	w, err := open.Writer()
	require.NoError(t, err)
	require.True(t, w.Push(1))

	done := spsc.New[string]()
	dw, err := done.Writer()
	require.NoError(t, err)
	dw.Close()

	server := NewServer(":0", reg)
	require.Equal(t, ":0", server.httpServer.Addr)
	server.Track("srv", open)
	server.Track("done", done)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var health Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, Health{
		Status: "ok",
		Channels: []ChannelState{
			{Name: "done", Depth: 0, Closed: true},
			{Name: "srv", Depth: 1, Closed: false},
		},
	}, health)

	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `spsc_pushed_total{channel="srv"} 1`), body)
}

func TestServer_HealthEmpty(t *testing.T) {
	server := NewServer(":0", prometheus.NewRegistry())

	health := server.Snapshot()
	require.Equal(t, "ok", health.Status)
	require.Empty(t, health.Channels)
}
