package restcore

import (
	"context"
	"time"
)

// OnRequestFunc is called when a request enters dispatch, before the
// non-resource chain is consulted. Use it to enrich the context with
// logging fields or trace spans. The returned context is used for the rest
// of the request.
type OnRequestFunc func(ctx context.Context, req *Request) context.Context

// OnDispatchFunc is called after routing resolution and body decoding, just
// before the request is handed to resource execution.
type OnDispatchFunc func(ctx context.Context, req *Request, routing *RoutingResult)

// OnSuccessFunc is called when a request completes with a protocol-level
// response.
type OnSuccessFunc func(ctx context.Context, req *Request, status int, duration time.Duration)

// OnFailureFunc is called when a request completes with an error, including
// errors rendered as protocol-level error responses.
type OnFailureFunc func(ctx context.Context, req *Request, err error, duration time.Duration)

// OnPanicFunc is called when the top-level safety net catches a panic. The
// request still completes with a generic failure afterwards.
type OnPanicFunc func(ctx context.Context, req *Request, recovered any)

// hooks holds all configured hook functions.
type hooks struct {
	onRequest  []OnRequestFunc
	onDispatch []OnDispatchFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
	onPanic    []OnPanicFunc
}

func (h *hooks) callOnRequest(ctx context.Context, req *Request) context.Context {
	for _, fn := range h.onRequest {
		ctx = fn(ctx, req)
	}
	return ctx
}

func (h *hooks) callOnDispatch(ctx context.Context, req *Request, routing *RoutingResult) {
	for _, fn := range h.onDispatch {
		fn(ctx, req, routing)
	}
}

func (h *hooks) callOnSuccess(ctx context.Context, req *Request, status int, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, req, status, d)
	}
}

func (h *hooks) callOnFailure(ctx context.Context, req *Request, err error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, req, err, d)
	}
}

func (h *hooks) callOnPanic(ctx context.Context, req *Request, recovered any) {
	for _, fn := range h.onPanic {
		fn(ctx, req, recovered)
	}
}
