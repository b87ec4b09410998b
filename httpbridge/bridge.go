// Package httpbridge adapts restcore servers onto concrete HTTP stacks.
// The dispatch core is transport-agnostic; this package provides the glue
// for net/http and fasthttp.
package httpbridge

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bjaus/restcore"
)

// maxBodyBytes caps how much of a request body the bridge will buffer.
const maxBodyBytes = 4 << 20 // 4MB

// Handler adapts a restcore.Server into a net/http handler. The request
// body is fully buffered before dispatch; the handler blocks until the
// completion is delivered, since net/http requires the response to be
// written before the handler returns.
func Handler(s *restcore.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			http.Error(w, `{"message":"cannot read request body"}`, http.StatusBadRequest)
			return
		}
		if len(body) > maxBodyBytes {
			http.Error(w, `{"message":"request body too large"}`, http.StatusRequestEntityTooLarge)
			return
		}

		req := &restcore.Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		}

		done := make(chan struct{})
		s.Dispatch(r.Context(), req, restcore.NewRequestContext(), restcore.CallbackFuncs(
			func(res *restcore.RestResponse) {
				defer close(done)
				writeResponse(w, res.Status, res.Header, res.Body)
			},
			func(err error) {
				defer close(done)
				var re *restcore.RestError
				if errors.As(err, &re) {
					writeResponse(w, re.Status, re.Header, re.Body)
					return
				}
				slog.Error("request failed without a protocol error", "method", req.Method, "path", req.Path, "error", err)
				body, _ := json.Marshal(restcore.ErrorDetail{
					Status:  http.StatusInternalServerError,
					Message: "internal server error",
				})
				writeResponse(w, http.StatusInternalServerError,
					http.Header{"Content-Type": []string{"application/json"}}, body)
			},
		))
		<-done
	})
}

func writeResponse(w http.ResponseWriter, status int, header http.Header, body []byte) {
	for k, vals := range header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}
