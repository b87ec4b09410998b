package restcore

import "context"

// NonResourceHandler is a pluggable handler consulted before ordinary
// resource dispatch. Handlers are registered once at server construction in
// a fixed order; for each request the server asks ShouldHandle down the
// chain and the first positive match takes exclusive ownership of the
// request, including its completion. Handlers hold no per-request state.
type NonResourceHandler interface {
	// ShouldHandle reports whether this handler claims the request. It
	// must be cheap and side-effect free.
	ShouldHandle(req *Request) bool

	// HandleRequest owns the claimed request and must complete the
	// callback exactly once.
	HandleRequest(ctx context.Context, req *Request, rc *RequestContext, cb Callback)
}

// DebugHandler is a debugging introspection delegate. Each configured
// delegate is mounted in the non-resource chain under the server's debug
// path prefix at its ID segment.
type DebugHandler interface {
	// ID is the path segment the delegate answers under, e.g. "stats"
	// for "/debug/stats".
	ID() string

	// HandleDebug owns the request and must complete the callback
	// exactly once.
	HandleDebug(ctx context.Context, req *Request, rc *RequestContext, cb Callback)
}

// DefaultDebugPathPrefix is where debug delegates are mounted unless
// overridden by configuration.
const DefaultDebugPathPrefix = "/debug"

// delegatingDebugHandler adapts a DebugHandler into the non-resource chain,
// claiming requests under prefix/<id>.
type delegatingDebugHandler struct {
	delegate DebugHandler
	match    Matcher
}

func newDelegatingDebugHandler(prefix string, d DebugHandler) *delegatingDebugHandler {
	base := prefix + "/" + d.ID()
	return &delegatingDebugHandler{
		delegate: d,
		match:    Or(PathIs(base), PathPrefix(base+"/")),
	}
}

func (h *delegatingDebugHandler) ShouldHandle(req *Request) bool {
	return h.match.Match(req)
}

func (h *delegatingDebugHandler) HandleRequest(ctx context.Context, req *Request, rc *RequestContext, cb Callback) {
	h.delegate.HandleDebug(ctx, req, rc, cb)
}
