package httpbridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/bjaus/restcore"
)

func newTestServer(t *testing.T) *restcore.Server {
	t.Helper()

	reg := restcore.NewRegistry()
	err := reg.Add(&restcore.ResourceDescriptor{
		Name: "users",
		Methods: []*restcore.MethodDescriptor{
			{Name: "get", Verb: "GET", Template: "/users/{id}"},
			{Name: "create", Verb: "POST", Template: "/users"},
		},
	})
	if err != nil {
		t.Fatalf("register users: %v", err)
	}

	exec := restcore.ExecutorFunc(func(_ context.Context, req *restcore.Request, routing *restcore.RoutingResult, entity restcore.Document, cb restcore.ResponseCallback) {
		switch routing.Method.Name {
		case "get":
			res := restcore.NewResponse(http.StatusOK)
			res.Entity = map[string]any{"id": routing.PathParams["id"]}
			cb.OnSuccess(res)
		case "create":
			if entity == nil || entity["name"] == nil {
				cb.OnError(restcore.NewErrorResponse(http.StatusUnprocessableEntity, "name is required"))
				return
			}
			cb.OnSuccess(restcore.NewResponse(http.StatusCreated))
		default:
			cb.OnError(errors.New("unreachable"))
		}
	})

	srv, err := restcore.New(restcore.WithResources(reg), restcore.WithExecutor(exec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return srv
}

func TestHandler(t *testing.T) {
	ts := httptest.NewServer(Handler(newTestServer(t)))
	defer ts.Close()

	t.Run("success round trip", func(t *testing.T) {
		res, err := http.Get(ts.URL + "/users/42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", res.StatusCode)
		}
		var doc map[string]any
		if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if doc["id"] != "42" {
			t.Errorf("id = %v, want 42", doc["id"])
		}
	})

	t.Run("protocol error round trip", func(t *testing.T) {
		res, err := http.Post(ts.URL+"/users", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", res.StatusCode)
		}
		body, _ := io.ReadAll(res.Body)
		var detail restcore.ErrorDetail
		if err := json.Unmarshal(body, &detail); err != nil {
			t.Fatalf("decode error body %q: %v", body, err)
		}
		if detail.Message != "name is required" {
			t.Errorf("message = %q, want the executor's detail", detail.Message)
		}
	})

	t.Run("unknown route returns 404", func(t *testing.T) {
		res, err := http.Get(ts.URL + "/nowhere")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", res.StatusCode)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		res, err := http.Post(ts.URL+"/users", "application/json", strings.NewReader(`{broken`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", res.StatusCode)
		}
	})
}

func TestFastHTTPHandler(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()

	handler := FastHTTPHandler(newTestServer(t))
	go func() {
		_ = fasthttp.Serve(ln, handler)
	}()

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(context.Context, string, string) (net.Conn, error) {
				return ln.Dial()
			},
		},
	}

	t.Run("success round trip", func(t *testing.T) {
		res, err := client.Get("http://inmemory/users/7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", res.StatusCode)
		}
		var doc map[string]any
		if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if doc["id"] != "7" {
			t.Errorf("id = %v, want 7", doc["id"])
		}
	})

	t.Run("protocol error round trip", func(t *testing.T) {
		res, err := client.Post("http://inmemory/users", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", res.StatusCode)
		}
	})
}

func TestFastHTTPHandler_RequestContextReachesExecutor(t *testing.T) {
	reg := restcore.NewRegistry()
	if err := reg.Add(&restcore.ResourceDescriptor{
		Name: "users",
		Methods: []*restcore.MethodDescriptor{
			{Name: "get", Verb: "GET", Template: "/users/{id}"},
		},
	}); err != nil {
		t.Fatalf("register users: %v", err)
	}

	var seen any
	exec := restcore.ExecutorFunc(func(ctx context.Context, _ *restcore.Request, _ *restcore.RoutingResult, _ restcore.Document, cb restcore.ResponseCallback) {
		seen = ctx.Value("trace")
		cb.OnSuccess(restcore.NewResponse(http.StatusOK))
	})
	srv, err := restcore.New(restcore.WithResources(reg), restcore.WithExecutor(exec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handler := FastHTTPHandler(srv)

	var freq fasthttp.Request
	freq.Header.SetMethod("GET")
	freq.SetRequestURI("/users/1")

	var rctx fasthttp.RequestCtx
	rctx.Init(&freq, nil, nil)
	rctx.SetUserValue("trace", "t-9")

	handler(&rctx)

	if seen != "t-9" {
		t.Errorf("trace value = %v, want the fasthttp user value", seen)
	}
	if rctx.Response.StatusCode() != http.StatusOK {
		t.Errorf("status = %d, want 200", rctx.Response.StatusCode())
	}
}
