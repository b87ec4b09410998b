package restcore

import (
	"log/slog"

	"golang.org/x/time/rate"
)

// Option configures a Server at construction.
type Option func(*Server)

// WithResolver sets the routing resolver. Required unless WithResources is
// used, which installs a TableResolver.
func WithResolver(r Resolver) Option {
	return func(s *Server) {
		s.resolver = r
	}
}

// WithResources installs a TableResolver over the registry and makes the
// registry available to the documentation handler.
//
// Example:
//
//	reg := restcore.NewRegistry()
//	_ = reg.Add(&restcore.ResourceDescriptor{
//	    Name: "users",
//	    Methods: []*restcore.MethodDescriptor{
//	        {Name: "get", Verb: "GET", Template: "/users/{id}"},
//	    },
//	})
//	srv, err := restcore.New(restcore.WithResources(reg), restcore.WithExecutor(exec))
func WithResources(reg *Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithExecutor sets the resource execution engine the server forwards
// resolved requests to. Required.
func WithExecutor(e Executor) Option {
	return func(s *Server) {
		s.executor = e
	}
}

// WithDocs enables the documentation handler at path. An empty path mounts
// it at DefaultDocsPath. The handler is placed first in the non-resource
// chain.
func WithDocs(path string) Option {
	return func(s *Server) {
		if path == "" {
			path = DefaultDocsPath
		}
		s.docsPath = path
	}
}

// WithMultiplexer overrides the multiplexer configuration. The multiplexer
// itself is always present in the chain; zero-value fields keep their
// defaults.
func WithMultiplexer(cfg MultiplexerConfig) Option {
	return func(s *Server) {
		if cfg.Path != "" {
			s.muxCfg.Path = cfg.Path
		}
		if cfg.MaxRequests > 0 {
			s.muxCfg.MaxRequests = cfg.MaxRequests
		}
		if cfg.HeaderAllowlist != nil {
			s.muxCfg.HeaderAllowlist = cfg.HeaderAllowlist
		}
		if cfg.Filter != nil {
			s.muxCfg.Filter = cfg.Filter
		}
		s.muxCfg.RunMode = cfg.RunMode
	}
}

// WithDebugHandler appends a debug delegate to the chain. Delegates are
// consulted in registration order, after the documentation handler and the
// multiplexer.
func WithDebugHandler(h DebugHandler) Option {
	return func(s *Server) {
		s.debug = append(s.debug, h)
	}
}

// WithDebugPathPrefix changes where debug delegates are mounted. Defaults
// to DefaultDebugPathPrefix.
func WithDebugPathPrefix(prefix string) Option {
	return func(s *Server) {
		s.debugPrefix = prefix
	}
}

// WithRateLimit caps the dispatch rate. Requests over the limit are
// rejected with a 429 before any routing work.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the slog logger used for defensive-path logging. Defaults
// to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithOnRequest adds a hook called when a request enters dispatch. Multiple
// hooks are called in order, with context chaining through each.
func WithOnRequest(fn OnRequestFunc) Option {
	return func(s *Server) {
		s.hooks.onRequest = append(s.hooks.onRequest, fn)
	}
}

// WithOnDispatch adds a hook called just before resource execution.
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(s *Server) {
		s.hooks.onDispatch = append(s.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called when a request completes successfully.
//
// Example:
//
//	restcore.WithOnSuccess(func(ctx context.Context, req *restcore.Request, status int, d time.Duration) {
//	    slog.InfoContext(ctx, "request done", "path", req.Path, "status", status, "duration", d)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(s *Server) {
		s.hooks.onSuccess = append(s.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called when a request completes with an error.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(s *Server) {
		s.hooks.onFailure = append(s.hooks.onFailure, fn)
	}
}

// WithOnPanic adds a hook called when the safety net catches a panic.
func WithOnPanic(fn OnPanicFunc) Option {
	return func(s *Server) {
		s.hooks.onPanic = append(s.hooks.onPanic, fn)
	}
}
