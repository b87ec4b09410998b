package restcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
)

// DefaultMultiplexerPath is where the multiplexer listens unless overridden.
const DefaultMultiplexerPath = "/mux"

// DefaultMaxMultiplexedRequests caps the sub-request fan-out per
// multiplexed request.
const DefaultMaxMultiplexedRequests = 20

// MultiplexerRunMode selects how sub-requests are executed.
type MultiplexerRunMode int

const (
	// RunModeParallel dispatches all sub-requests concurrently.
	RunModeParallel MultiplexerRunMode = iota

	// RunModeSequential dispatches sub-requests one at a time, in key
	// order.
	RunModeSequential
)

func (m MultiplexerRunMode) String() string {
	switch m {
	case RunModeParallel:
		return "parallel"
	case RunModeSequential:
		return "sequential"
	}
	return fmt.Sprintf("MultiplexerRunMode(%d)", int(m))
}

// MultiplexerFilter inspects or rewrites an individual sub-request before
// it is dispatched. Returning an error fails that sub-request only; the
// rest of the envelope still runs.
type MultiplexerFilter interface {
	FilterRequest(id string, req *IndividualRequest) error
}

// MultiplexerFilterFunc adapts a function to a MultiplexerFilter.
type MultiplexerFilterFunc func(id string, req *IndividualRequest) error

func (f MultiplexerFilterFunc) FilterRequest(id string, req *IndividualRequest) error {
	return f(id, req)
}

// MultiplexerConfig is the construction-time configuration surface of the
// multiplexer.
type MultiplexerConfig struct {
	Path            string
	MaxRequests     int
	HeaderAllowlist []string
	Filter          MultiplexerFilter
	RunMode         MultiplexerRunMode
}

// IndividualRequest is one logical sub-request inside a multiplexed
// envelope.
type IndividualRequest struct {
	Method      string            `json:"method"`
	RelativeURL string            `json:"relativeUrl"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        json.RawMessage   `json:"body,omitempty"`
}

// IndividualResponse is the outcome of one sub-request.
type IndividualResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

type multiplexedEnvelope struct {
	Requests map[string]IndividualRequest `json:"requests"`
}

type multiplexedResponse struct {
	Responses map[string]IndividualResponse `json:"responses"`
}

// multiplexer bundles several logical sub-requests into one physical
// request. It is always present in the non-resource chain and claims POSTs
// on its configured path, bypassing ordinary routing for the envelope.
// Sub-requests are fanned back through the server's dispatch entry point,
// each with a fresh RequestContext, and failures are isolated per
// sub-request.
type multiplexer struct {
	cfg      MultiplexerConfig
	allowed  map[string]struct{}
	dispatch func(ctx context.Context, req *Request, rc *RequestContext, cb Callback)
}

func newMultiplexer(cfg MultiplexerConfig, dispatch func(context.Context, *Request, *RequestContext, Callback)) *multiplexer {
	if cfg.Path == "" {
		cfg.Path = DefaultMultiplexerPath
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxMultiplexedRequests
	}
	allowed := make(map[string]struct{}, len(cfg.HeaderAllowlist))
	for _, name := range cfg.HeaderAllowlist {
		allowed[http.CanonicalHeaderKey(name)] = struct{}{}
	}
	return &multiplexer{cfg: cfg, allowed: allowed, dispatch: dispatch}
}

func (m *multiplexer) ShouldHandle(req *Request) bool {
	return req.Method == http.MethodPost && req.Path == m.cfg.Path
}

func (m *multiplexer) HandleRequest(ctx context.Context, req *Request, rc *RequestContext, cb Callback) {
	env, err := m.readEnvelope(req)
	if err != nil {
		cb.OnError(buildPreRoutingError(req, err))
		return
	}

	ids := make([]string, 0, len(env.Requests))
	for id := range env.Requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make(map[string]IndividualResponse, len(ids))
	var mu sync.Mutex

	run := func(id string) {
		ind := env.Requests[id]
		res := m.runIndividual(ctx, req, id, &ind)
		mu.Lock()
		results[id] = res
		mu.Unlock()
	}

	switch m.cfg.RunMode {
	case RunModeSequential:
		for _, id := range ids {
			run(id)
		}
	default:
		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				run(id)
			}(id)
		}
		wg.Wait()
	}

	body, err := json.Marshal(multiplexedResponse{Responses: results})
	if err != nil {
		cb.OnError(fmt.Errorf("encode multiplexed response: %w", err))
		return
	}
	header := make(http.Header)
	header.Set("Content-Type", MediaTypeJSON)
	cb.OnSuccess(&RestResponse{Status: http.StatusOK, Header: header, Body: body})
}

// readEnvelope parses and validates the multiplexed envelope. Envelope
// failures fail the whole request; per-sub-request failures do not.
func (m *multiplexer) readEnvelope(req *Request) (*multiplexedEnvelope, error) {
	if !req.HasEntity() || !gjson.ValidBytes(req.Body) {
		return nil, NewRoutingError(http.StatusBadRequest, "multiplexed request body must be a JSON envelope")
	}
	if !gjson.GetBytes(req.Body, "requests").Exists() {
		return nil, NewRoutingError(http.StatusBadRequest, "multiplexed envelope has no requests")
	}
	var env multiplexedEnvelope
	if err := json.Unmarshal(req.Body, &env); err != nil {
		re := NewRoutingError(http.StatusBadRequest, "cannot parse multiplexed envelope")
		re.Cause = err
		return nil, re
	}
	if len(env.Requests) == 0 {
		return nil, NewRoutingError(http.StatusBadRequest, "multiplexed envelope has no requests")
	}
	if len(env.Requests) > m.cfg.MaxRequests {
		return nil, NewRoutingError(http.StatusBadRequest,
			fmt.Sprintf("too many multiplexed requests: %d > %d", len(env.Requests), m.cfg.MaxRequests))
	}
	for id, ind := range env.Requests {
		for name := range ind.Headers {
			if _, ok := m.allowed[http.CanonicalHeaderKey(name)]; !ok {
				return nil, NewRoutingError(http.StatusBadRequest,
					fmt.Sprintf("request %s: header %q is not allowed in multiplexed requests", id, name))
			}
		}
	}
	return &env, nil
}

// runIndividual dispatches one sub-request and blocks until it completes.
func (m *multiplexer) runIndividual(ctx context.Context, outer *Request, id string, ind *IndividualRequest) IndividualResponse {
	if m.cfg.Filter != nil {
		if err := m.cfg.Filter.FilterRequest(id, ind); err != nil {
			return errorIndividual(statusOf(err), err.Error())
		}
	}

	u, err := url.Parse(ind.RelativeURL)
	if err != nil || u.Path == "" {
		return errorIndividual(http.StatusBadRequest, fmt.Sprintf("invalid relative URL %q", ind.RelativeURL))
	}
	if u.Path == m.cfg.Path {
		return errorIndividual(http.StatusBadRequest, "nested multiplexed requests are not allowed")
	}

	header := make(http.Header)
	for k, vals := range outer.Header {
		header[k] = append([]string(nil), vals...)
	}
	for name, value := range ind.Headers {
		header.Set(name, value)
	}

	sub := &Request{
		Method:   ind.Method,
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Header:   header,
		Body:     []byte(ind.Body),
	}

	done := make(chan IndividualResponse, 1)
	m.dispatch(ctx, sub, NewRequestContext(), CallbackFuncs(
		func(res *RestResponse) {
			done <- IndividualResponse{
				Status:  res.Status,
				Headers: flattenHeader(res.Header),
				Body:    rawBody(res.Body),
			}
		},
		func(err error) {
			var re *RestError
			if errors.As(err, &re) {
				done <- IndividualResponse{
					Status:  re.Status,
					Headers: flattenHeader(re.Header),
					Body:    rawBody(re.Body),
				}
				return
			}
			done <- errorIndividual(http.StatusInternalServerError, "internal error")
		},
	))
	return <-done
}

func errorIndividual(status int, message string) IndividualResponse {
	body, _ := json.Marshal(ErrorDetail{Status: status, Message: message})
	return IndividualResponse{
		Status:  status,
		Headers: map[string]string{"Content-Type": MediaTypeJSON},
		Body:    body,
	}
}

// rawBody embeds a sub-response body into the JSON envelope: JSON bodies go
// in raw, anything else as a JSON string.
func rawBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}

func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, vals := range h {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}
