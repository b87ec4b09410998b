package restcore

import (
	"fmt"
	"net/http"
)

// Response is the normalized, wire-format-independent result of resource
// execution: a status code, response headers, and an optional structured
// entity. The completion adapter converts it into a RestResponse on the way
// out.
type Response struct {
	Status int
	Header http.Header
	Entity any
}

// NewResponse creates a Response with the given status and an empty header
// map.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// RestResponse is the final protocol-level response: status, headers, and
// encoded body bytes. It is what the transport layer writes to the wire.
type RestResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// RestError is a protocol-level error response. It carries the same shape as
// a RestResponse plus the underlying cause, so transports can write a
// well-formed error body while error chains stay inspectable via errors.Is
// and errors.As.
type RestError struct {
	Status int
	Header http.Header
	Body   []byte

	// Cause is the error this response was built from, if any.
	Cause error
}

func (e *RestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rest error %d: %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("rest error %d", e.Status)
}

func (e *RestError) Unwrap() error { return e.Cause }
