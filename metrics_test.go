package restcore

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	t.Run("counts successes by status class", func(t *testing.T) {
		m := NewMetrics()
		opts := append(m.Options(),
			WithResources(testRegistry(t)),
			WithExecutor(&recordingExecutor{}),
		)
		srv, err := New(opts...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cb := newCapture()
		srv.Dispatch(context.Background(), getReq("GET", "/users/1"), NewRequestContext(), cb)
		cb.wait(t)

		if got := testutil.ToFloat64(m.requests.WithLabelValues("2xx")); got != 1 {
			t.Errorf("2xx count = %v, want 1", got)
		}
	})

	t.Run("counts failures by derived status class", func(t *testing.T) {
		m := NewMetrics()
		opts := append(m.Options(),
			WithResources(testRegistry(t)),
			WithExecutor(&recordingExecutor{}),
		)
		srv, err := New(opts...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cb := newCapture()
		srv.Dispatch(context.Background(), getReq("GET", "/nowhere"), NewRequestContext(), cb)
		cb.wait(t)

		if got := testutil.ToFloat64(m.requests.WithLabelValues("4xx")); got != 1 {
			t.Errorf("4xx count = %v, want 1", got)
		}
	})

	t.Run("counts panics", func(t *testing.T) {
		m := NewMetrics()
		opts := append(m.Options(),
			WithResolver(ResolverFunc(func(*Request, *RequestContext) (*RoutingResult, error) {
				panic("boom")
			})),
			WithExecutor(&recordingExecutor{}),
		)
		srv, err := New(opts...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cb := newCapture()
		srv.Dispatch(context.Background(), getReq("GET", "/users/1"), NewRequestContext(), cb)
		cb.wait(t)

		if got := testutil.ToFloat64(m.panics); got != 1 {
			t.Errorf("panic count = %v, want 1", got)
		}
	})

	t.Run("stats debug delegate renders text format", func(t *testing.T) {
		m := NewMetrics()
		opts := append(m.Options(),
			WithResources(testRegistry(t)),
			WithExecutor(&recordingExecutor{}),
			WithDebugHandler(m.DebugHandler()),
		)
		srv, err := New(opts...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		warm := newCapture()
		srv.Dispatch(context.Background(), getReq("GET", "/users/1"), NewRequestContext(), warm)
		warm.wait(t)

		cb := newCapture()
		srv.Dispatch(context.Background(), getReq("GET", "/debug/stats"), NewRequestContext(), cb)
		cb.wait(t)

		if cb.err != nil {
			t.Fatalf("unexpected error: %v", cb.err)
		}
		if cb.res.Status != http.StatusOK {
			t.Errorf("status = %d, want 200", cb.res.Status)
		}
		if !strings.Contains(string(cb.res.Body), "restcore_requests_total") {
			t.Error("exposition body does not contain the request counter")
		}
	})
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{404, "4xx"},
		{500, "5xx"},
		{0, "error"},
		{799, "error"},
	}
	for _, tt := range tests {
		if got := statusClass(tt.status); got != tt.want {
			t.Errorf("statusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
