package restcore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Executor is the resource execution engine. It receives the resolved
// routing result and the decoded entity, runs the target method, and
// completes the callback exactly once with an internal Response or an
// error. Execution may complete asynchronously on another goroutine.
type Executor interface {
	Execute(ctx context.Context, req *Request, routing *RoutingResult, entity Document, cb ResponseCallback)
}

// ExecutorFunc adapts a function to an Executor.
type ExecutorFunc func(ctx context.Context, req *Request, routing *RoutingResult, entity Document, cb ResponseCallback)

func (f ExecutorFunc) Execute(ctx context.Context, req *Request, routing *RoutingResult, entity Document, cb ResponseCallback) {
	f(ctx, req, routing, entity, cb)
}

// Server is the request-dispatch core: it decides which subsystem handles
// each inbound request, decodes the body when present, forwards to resource
// execution, and converts the eventual outcome into a protocol-level
// response.
//
// Usage:
//  1. Build a Registry of resources (or bring your own Resolver)
//  2. Construct with New, supplying the Executor and options
//  3. Feed requests through Dispatch from your transport
//
// Server is safe for concurrent use: the handler chain and routing table
// are assembled once in New and never mutated afterwards, and each request
// owns its RequestContext and RoutingResult.
type Server struct {
	resolver    Resolver
	executor    Executor
	registry    *Registry
	chain       []NonResourceHandler
	debug       []DebugHandler
	debugPrefix string
	docsPath    string
	muxCfg      MultiplexerConfig
	limiter     *rate.Limiter
	hooks       hooks
	log         *slog.Logger
}

// New constructs a Server. The non-resource handler chain is assembled
// here, in fixed order: the documentation handler if enabled, the
// multiplexer always, then each configured debug delegate. The chain is
// immutable for the server's lifetime.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		debugPrefix: DefaultDebugPathPrefix,
		muxCfg: MultiplexerConfig{
			Path:        DefaultMultiplexerPath,
			MaxRequests: DefaultMaxMultiplexedRequests,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.executor == nil {
		return nil, fmt.Errorf("restcore: an Executor is required")
	}
	if s.resolver == nil {
		if s.registry == nil {
			return nil, fmt.Errorf("restcore: a Resolver or a Registry is required")
		}
		resolver, err := NewTableResolver(s.registry)
		if err != nil {
			return nil, err
		}
		s.resolver = resolver
	}

	if s.docsPath != "" {
		if s.registry == nil {
			return nil, fmt.Errorf("restcore: documentation requires a Registry")
		}
		s.chain = append(s.chain, newDocsHandler(s.docsPath, s.registry))
	}
	s.chain = append(s.chain, newMultiplexer(s.muxCfg, s.Dispatch))
	for _, d := range s.debug {
		s.chain = append(s.chain, newDelegatingDebugHandler(s.debugPrefix, d))
	}
	return s, nil
}

// Dispatch routes one request. Control returns to the caller as soon as the
// request has been handed to its owner; the outcome is delivered later,
// exactly once, on cb. Any uncaught failure anywhere in dispatch is caught
// at this boundary and reported as a generic failure: a request never
// hangs, and never takes the process down with it.
func (s *Server) Dispatch(ctx context.Context, req *Request, rc *RequestContext, cb Callback) {
	watched := &observedCallback{ctx: ctx, req: req, s: s, next: cb, start: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			s.hooks.callOnPanic(watched.ctx, req, r)
			s.log.Error("uncaught panic in dispatch",
				"method", req.Method,
				"path", req.Path,
				"headers", SafeHeaders(req.Header),
				"panic", r,
			)
			watched.OnError(fmt.Errorf("restcore: internal dispatch failure: %v", r))
		}
	}()

	// OnRequest hooks are user code and run inside the guard.
	ctx = s.hooks.callOnRequest(ctx, req)
	watched.ctx = ctx

	if s.limiter != nil && !s.limiter.Allow() {
		watched.OnError(buildPreRoutingError(req, NewRoutingError(http.StatusTooManyRequests, "request rate exceeded")))
		return
	}

	for _, h := range s.chain {
		if h.ShouldHandle(req) {
			h.HandleRequest(ctx, req, rc, watched)
			return
		}
	}

	s.handleResourceRequest(ctx, req, rc, watched)
}

// handleResourceRequest resolves routing for an unclaimed request.
// Resolution failures happen before a RoutingResult exists, so they are
// translated through the standalone pre-routing path.
func (s *Server) handleResourceRequest(ctx context.Context, req *Request, rc *RequestContext, cb Callback) {
	routing, err := s.resolver.Resolve(req, rc)
	if err != nil {
		cb.OnError(buildPreRoutingError(req, err))
		return
	}
	s.dispatchResolved(ctx, req, routing, cb)
}

// dispatchResolved decodes the body under the route's policy, attaches the
// completion adapter bound to this RoutingResult, and hands off to resource
// execution.
func (s *Server) dispatchResolved(ctx context.Context, req *Request, routing *RoutingResult, cb Callback) {
	var entity Document
	if req.HasEntity() {
		if routing.Unstructured() {
			cb.OnError(buildRestError(routing,
				NewErrorResponse(http.StatusBadRequest, "structured entity is not supported on an unstructured-data route")))
			return
		}
		decoded, err := decodeEntity(req)
		if err != nil {
			resErr := NewErrorResponse(http.StatusBadRequest, "cannot parse request entity")
			resErr.Cause = err
			cb.OnError(buildRestError(routing, resErr))
			return
		}
		entity = decoded
	}

	s.hooks.callOnDispatch(ctx, req, routing)
	s.executor.Execute(ctx, req, routing, entity, newCallbackAdapter(cb, routing, buildRestResponse))
}

// observedCallback instruments the outer completion channel with the
// success/failure hooks and guards delivery: the first outcome wins and any
// later one is dropped and logged, so a defensive double completion cannot
// reach the transport twice.
type observedCallback struct {
	ctx   context.Context
	req   *Request
	s     *Server
	next  Callback
	start time.Time
	once  sync.Once
}

func (c *observedCallback) OnSuccess(res *RestResponse) {
	delivered := false
	c.once.Do(func() {
		delivered = true
		c.s.hooks.callOnSuccess(c.ctx, c.req, res.Status, time.Since(c.start))
		c.next.OnSuccess(res)
	})
	if !delivered {
		c.s.log.Warn("dropped duplicate completion", "method", c.req.Method, "path", c.req.Path)
	}
}

func (c *observedCallback) OnError(err error) {
	delivered := false
	c.once.Do(func() {
		delivered = true
		c.s.hooks.callOnFailure(c.ctx, c.req, err, time.Since(c.start))
		c.next.OnError(err)
	})
	if !delivered {
		c.s.log.Warn("dropped duplicate completion", "method", c.req.Method, "path", c.req.Path, "error", err)
	}
}
