package restcore

import (
	"mime"
	"net/http"
	"net/url"
)

// Request is a fully buffered, transport-agnostic inbound request. The
// transport layer (see httpbridge) constructs one per wire request; the
// dispatch core treats it as read-only for the request's lifetime.
type Request struct {
	// Method is the request verb (GET, POST, ...).
	Method string

	// Path is the URL path, without query string.
	Path string

	// RawQuery is the unparsed query string, without the leading '?'.
	RawQuery string

	// Header holds the request headers. Keys are canonicalized,
	// case-insensitive per http.Header semantics.
	Header http.Header

	// Body is the raw request payload. A nil or empty body means the
	// request carries no entity.
	Body []byte
}

// HasEntity reports whether the request carries a non-empty body.
func (r *Request) HasEntity() bool {
	return len(r.Body) > 0
}

// ContentType returns the media type of the request body, stripped of
// parameters, or "" when no Content-Type header is set.
func (r *Request) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

// Query parses and returns the query parameters. The request itself is not
// mutated; callers that need the values repeatedly should hold the result.
func (r *Request) Query() url.Values {
	v, err := url.ParseQuery(r.RawQuery)
	if err != nil {
		return url.Values{}
	}
	return v
}

// RequestContext is a mutable, per-request bag of attributes (resolved
// identity, feature flags, trace baggage). A fresh context is created for
// every request and discarded at completion; it is never shared across
// requests and is not safe for concurrent use.
type RequestContext struct {
	attrs map[string]any
}

// NewRequestContext creates an empty per-request context.
func NewRequestContext() *RequestContext {
	return &RequestContext{attrs: make(map[string]any)}
}

// Get returns the attribute stored under key.
func (c *RequestContext) Get(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// Set stores an attribute under key, replacing any previous value.
func (c *RequestContext) Set(key string, value any) {
	c.attrs[key] = value
}
