package restcore

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// buildRestResponse converts an internal response into its protocol form.
// The entity is encoded with the codec negotiated from the originating
// request's Accept header, carried by the routing result. A nil entity
// produces an empty body.
func buildRestResponse(routing *RoutingResult, res *Response) (*RestResponse, error) {
	out := &RestResponse{
		Status: res.Status,
		Header: make(http.Header),
	}
	for k, vals := range res.Header {
		out.Header[k] = append([]string(nil), vals...)
	}
	if res.Entity == nil {
		return out, nil
	}
	c := codecForAccept(acceptOf(routing))
	body, err := c.Marshal(res.Entity)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	out.Body = body
	out.Header.Set("Content-Type", c.MediaType())
	return out, nil
}

// buildRestError renders a response-shaped error through the same path as a
// success. An entity that fails to encode degrades to a bare status so the
// request still completes with a well-formed error.
func buildRestError(routing *RoutingResult, resErr *ResponseError) *RestError {
	out := &RestError{
		Status: resErr.Response.Status,
		Header: make(http.Header),
		Cause:  resErr,
	}
	for k, vals := range resErr.Response.Header {
		out.Header[k] = append([]string(nil), vals...)
	}
	if resErr.Response.Entity == nil {
		return out
	}
	c := codecForAccept(acceptOf(routing))
	body, err := c.Marshal(resErr.Response.Entity)
	if err != nil {
		return out
	}
	out.Body = body
	out.Header.Set("Content-Type", c.MediaType())
	return out
}

// buildPreRoutingError translates a failure that occurred before routing
// resolution. With no RoutingResult to shape against, the detail body is
// always JSON and derives only from the request and the error.
func buildPreRoutingError(req *Request, err error) *RestError {
	status := statusOf(err)
	detail := ErrorDetail{Status: status, Message: err.Error()}
	body, merr := json.Marshal(detail)
	if merr != nil {
		body = nil
	}
	out := &RestError{
		Status: status,
		Header: make(http.Header),
		Body:   body,
		Cause:  err,
	}
	if body != nil {
		out.Header.Set("Content-Type", MediaTypeJSON)
	}
	return out
}

func acceptOf(routing *RoutingResult) string {
	if routing == nil || routing.Request == nil {
		return ""
	}
	return routing.Request.Header.Get("Accept")
}
