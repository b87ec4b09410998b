package restcore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Metrics instruments dispatch outcomes with prometheus collectors. Attach
// it to a server with its Options, and optionally expose the numbers
// through its debug delegate:
//
//	m := restcore.NewMetrics()
//	srv, err := restcore.New(append(m.Options(),
//	    restcore.WithResources(reg),
//	    restcore.WithExecutor(exec),
//	    restcore.WithDebugHandler(m.DebugHandler()),
//	)...)
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	panics   prometheus.Counter
}

// NewMetrics creates a Metrics with its own prometheus registry, including
// the standard Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restcore_requests_total",
			Help: "Dispatched requests by status class.",
		}, []string{"class"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "restcore_dispatch_duration_seconds",
			Help:    "Time from dispatch entry to completion delivery.",
			Buckets: prometheus.DefBuckets,
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restcore_dispatch_panics_total",
			Help: "Panics caught by the dispatch safety net.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.panics)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}

// Registry exposes the underlying prometheus registry, for callers that
// mount their own /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Options returns the hook options that drive the collectors.
func (m *Metrics) Options() []Option {
	return []Option{
		WithOnSuccess(func(_ context.Context, _ *Request, status int, d time.Duration) {
			m.observe(status, d)
		}),
		WithOnFailure(func(_ context.Context, _ *Request, err error, d time.Duration) {
			m.observe(statusOf(err), d)
		}),
		WithOnPanic(func(_ context.Context, _ *Request, _ any) {
			m.panics.Inc()
		}),
	}
}

func (m *Metrics) observe(status int, d time.Duration) {
	m.requests.WithLabelValues(statusClass(status)).Inc()
	m.duration.Observe(d.Seconds())
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return fmt.Sprintf("%dxx", status/100)
}

// DebugHandler returns a debug delegate with ID "stats" that renders the
// registry in the prometheus text exposition format.
func (m *Metrics) DebugHandler() DebugHandler {
	return &statsDebugHandler{metrics: m}
}

type statsDebugHandler struct {
	metrics *Metrics
}

func (h *statsDebugHandler) ID() string { return "stats" }

func (h *statsDebugHandler) HandleDebug(_ context.Context, req *Request, _ *RequestContext, cb Callback) {
	families, err := h.metrics.registry.Gather()
	if err != nil {
		cb.OnError(err)
		return
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			cb.OnError(err)
			return
		}
	}
	header := make(http.Header)
	header.Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	cb.OnSuccess(&RestResponse{Status: http.StatusOK, Header: header, Body: buf.Bytes()})
}
