package restcore

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// Resolver maps a request to its dispatch target. Implementations must be
// safe for concurrent use and must not retain or mutate the request.
type Resolver interface {
	Resolve(req *Request, rc *RequestContext) (*RoutingResult, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(req *Request, rc *RequestContext) (*RoutingResult, error)

func (f ResolverFunc) Resolve(req *Request, rc *RequestContext) (*RoutingResult, error) {
	return f(req, rc)
}

// RoutingResult is the resolved dispatch target for one request: the
// resource, the method signature, and the bound path and query arguments.
// It is produced once per request and never mutated afterwards; both the
// body-decoding policy and response shaping read from it.
type RoutingResult struct {
	Request    *Request
	Resource   *ResourceDescriptor
	Method     *MethodDescriptor
	PathParams map[string]string
	Query      url.Values
}

// Unstructured reports whether the resolved route exchanges raw bytes
// rather than structured entities.
func (r *RoutingResult) Unstructured() bool {
	return r.Method != nil && r.Method.Unstructured
}

// TableResolver is the default Resolver: it matches requests against the
// path templates of a Registry using a gorilla/mux route table built once
// at construction.
type TableResolver struct {
	router  *mux.Router
	entries map[string]routeEntry
}

type routeEntry struct {
	resource *ResourceDescriptor
	method   *MethodDescriptor
}

// NewTableResolver builds a resolver over the given registry. Route
// templates use gorilla/mux syntax; a template that fails to compile is a
// construction error, not a per-request one.
func NewTableResolver(reg *Registry) (*TableResolver, error) {
	t := &TableResolver{
		router:  mux.NewRouter(),
		entries: make(map[string]routeEntry),
	}
	for _, res := range reg.Resources() {
		for _, m := range res.Methods {
			name := res.Name + "." + m.Name
			route := t.router.NewRoute().
				Name(name).
				Methods(m.Verb).
				Path(m.Template)
			if err := route.GetError(); err != nil {
				return nil, fmt.Errorf("route %s: %w", name, err)
			}
			t.entries[name] = routeEntry{resource: res, method: m}
		}
	}
	return t, nil
}

// Resolve matches the request against the route table. Unknown paths yield
// a 404 RoutingError, known paths with the wrong verb a 405. Resolution is
// a pure function of the request, so resolving the same request twice
// yields an equivalent result.
func (t *TableResolver) Resolve(req *Request, _ *RequestContext) (*RoutingResult, error) {
	probe := &http.Request{
		Method: req.Method,
		URL:    &url.URL{Path: req.Path, RawQuery: req.RawQuery},
	}
	var m mux.RouteMatch
	if !t.router.Match(probe, &m) {
		if m.MatchErr == mux.ErrMethodMismatch {
			return nil, NewRoutingError(http.StatusMethodNotAllowed,
				fmt.Sprintf("method %s not allowed for %s", req.Method, req.Path))
		}
		return nil, NewRoutingError(http.StatusNotFound,
			fmt.Sprintf("no resource for %s", req.Path))
	}
	entry, ok := t.entries[m.Route.GetName()]
	if !ok {
		return nil, NewRoutingError(http.StatusNotFound,
			fmt.Sprintf("no resource for %s", req.Path))
	}
	params := make(map[string]string, len(m.Vars))
	for k, v := range m.Vars {
		params[k] = v
	}
	return &RoutingResult{
		Request:    req,
		Resource:   entry.resource,
		Method:     entry.method,
		PathParams: params,
		Query:      req.Query(),
	}, nil
}
