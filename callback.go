package restcore

import "errors"

// Callback is the completion channel for a dispatched request. The server
// delivers exactly one outcome per request: OnSuccess with the final
// protocol-level response, or OnError with a failure (typically a
// *RestError; unclassified failures pass through as-is).
//
// Transports implement Callback to write the outcome to the wire; see
// httpbridge for the net/http and fasthttp implementations.
type Callback interface {
	OnSuccess(res *RestResponse)
	OnError(err error)
}

// CallbackFuncs builds a Callback from two functions. Use for tests and
// simple transports:
//
//	done := make(chan struct{})
//	cb := restcore.CallbackFuncs(
//	    func(res *restcore.RestResponse) { write(res); close(done) },
//	    func(err error) { writeError(err); close(done) },
//	)
func CallbackFuncs(onSuccess func(*RestResponse), onError func(error)) Callback {
	return &callbackFuncs{onSuccess: onSuccess, onError: onError}
}

type callbackFuncs struct {
	onSuccess func(*RestResponse)
	onError   func(error)
}

func (c *callbackFuncs) OnSuccess(res *RestResponse) { c.onSuccess(res) }
func (c *callbackFuncs) OnError(err error)           { c.onError(err) }

// ResponseCallback is the completion channel handed to resource execution.
// It receives the normalized internal outcome, before protocol conversion.
type ResponseCallback interface {
	OnSuccess(res *Response)
	OnError(err error)
}

// convertFunc builds a protocol-level response from an internal response,
// using the routing result for response shaping.
type convertFunc func(routing *RoutingResult, res *Response) (*RestResponse, error)

// callbackAdapter bridges the internal completion channel to the protocol
// one. Bound to a RoutingResult at construction, it applies the conversion
// function on success; a ResponseError on the failure path is rendered
// through the same response-building machinery, while any other error is
// passed through unchanged.
type callbackAdapter struct {
	next    Callback
	routing *RoutingResult
	convert convertFunc
}

func newCallbackAdapter(next Callback, routing *RoutingResult, convert convertFunc) *callbackAdapter {
	return &callbackAdapter{next: next, routing: routing, convert: convert}
}

func (a *callbackAdapter) OnSuccess(res *Response) {
	out, err := a.convert(a.routing, res)
	if err != nil {
		// A failed conversion must not surface as a corrupt success.
		// Conversion is attempted once; the failure goes out raw.
		a.next.OnError(err)
		return
	}
	a.next.OnSuccess(out)
}

func (a *callbackAdapter) OnError(err error) {
	var re *ResponseError
	if errors.As(err, &re) {
		a.next.OnError(buildRestError(a.routing, re))
		return
	}
	a.next.OnError(err)
}
