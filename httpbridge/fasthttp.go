package httpbridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/bjaus/restcore"
)

// FastHTTPHandler adapts a restcore.Server into a fasthttp request handler.
// fasthttp buffers request bodies itself, so the request is handed to
// dispatch directly; the handler blocks until completion like the net/http
// bridge.
func FastHTTPHandler(s *restcore.Server) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		header := make(http.Header)
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			header.Add(string(k), string(v))
		})

		req := &restcore.Request{
			Method:   string(ctx.Method()),
			Path:     string(ctx.Path()),
			RawQuery: string(ctx.URI().QueryString()),
			Header:   header,
			Body:     append([]byte(nil), ctx.PostBody()...),
		}

		// RequestCtx is itself a context.Context, so user values and
		// cancellation flow through to the executor.
		done := make(chan struct{})
		s.Dispatch(ctx, req, restcore.NewRequestContext(), restcore.CallbackFuncs(
			func(res *restcore.RestResponse) {
				defer close(done)
				writeFastResponse(ctx, res.Status, res.Header, res.Body)
			},
			func(err error) {
				defer close(done)
				var re *restcore.RestError
				if errors.As(err, &re) {
					writeFastResponse(ctx, re.Status, re.Header, re.Body)
					return
				}
				slog.Error("request failed without a protocol error", "method", req.Method, "path", req.Path, "error", err)
				body, _ := json.Marshal(restcore.ErrorDetail{
					Status:  http.StatusInternalServerError,
					Message: "internal server error",
				})
				writeFastResponse(ctx, http.StatusInternalServerError,
					http.Header{"Content-Type": []string{"application/json"}}, body)
			},
		))
		<-done
	}
}

func writeFastResponse(ctx *fasthttp.RequestCtx, status int, header http.Header, body []byte) {
	for k, vals := range header {
		for _, v := range vals {
			ctx.Response.Header.Add(k, v)
		}
	}
	ctx.SetStatusCode(status)
	if len(body) > 0 {
		_, _ = ctx.Write(body)
	}
}
