package restcore

import (
	"errors"
	"fmt"
	"net/http"
)

// RoutingError reports a failure to resolve a request to a resource method:
// unknown path, no matching verb, malformed route arguments. It carries the
// client-facing status code directly.
type RoutingError struct {
	Status  int
	Message string
	Cause   error
}

// NewRoutingError creates a RoutingError with the given status and message.
func NewRoutingError(status int, message string) *RoutingError {
	return &RoutingError{Status: status, Message: message}
}

func (e *RoutingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RoutingError) Unwrap() error { return e.Cause }

// ErrorDetail is the machine-consumable error document rendered into
// protocol-level error bodies.
type ErrorDetail struct {
	Status  int    `json:"status" cbor:"status"`
	Code    string `json:"code,omitempty" cbor:"code,omitempty"`
	Message string `json:"message" cbor:"message"`
}

// ResponseError is an error that already carries a fully formed internal
// response describing the failure. Resource execution returns it to signal
// rich, typed failures (validation errors, not-founds) that should be
// rendered through the same response-building path as a success.
type ResponseError struct {
	Response *Response
	Cause    error
}

// NewErrorResponse builds a ResponseError whose response body is an
// ErrorDetail with the given status and message.
func NewErrorResponse(status int, message string) *ResponseError {
	res := NewResponse(status)
	res.Entity = ErrorDetail{Status: status, Message: message}
	return &ResponseError{Response: res}
}

func (e *ResponseError) Error() string {
	if d, ok := e.Response.Entity.(ErrorDetail); ok && d.Message != "" {
		return fmt.Sprintf("error response %d: %s", e.Response.Status, d.Message)
	}
	return fmt.Sprintf("error response %d", e.Response.Status)
}

func (e *ResponseError) Unwrap() error { return e.Cause }

// statusOf extracts a client-facing status code from an error, defaulting to
// 500 for anything that does not declare one.
func statusOf(err error) int {
	var re *RoutingError
	if errors.As(err, &re) {
		return re.Status
	}
	var pe *ResponseError
	if errors.As(err, &pe) {
		return pe.Response.Status
	}
	var we *RestError
	if errors.As(err, &we) {
		return we.Status
	}
	return http.StatusInternalServerError
}
