// Package restcore is the request-dispatch core for resource-oriented RPC
// servers.
//
// restcore sits between a request/response transport and a resource
// execution engine. For every inbound request it decides, in a fixed
// precedence order, which subsystem owns it (API documentation, multiplexed
// sub-requests, debugging introspection, or ordinary resource invocation),
// decodes the body when the route allows one, invokes the resolved target
// asynchronously, and converts the eventual outcome into a protocol-level
// response with correct status codes and headers.
//
// # Quick Start
//
// Describe your resources, supply an execution engine, and construct a
// server:
//
//	reg := restcore.NewRegistry()
//	_ = reg.Add(&restcore.ResourceDescriptor{
//	    Name: "users",
//	    Methods: []*restcore.MethodDescriptor{
//	        {Name: "get", Verb: "GET", Template: "/users/{id}"},
//	        {Name: "create", Verb: "POST", Template: "/users"},
//	    },
//	})
//
//	srv, err := restcore.New(
//	    restcore.WithResources(reg),
//	    restcore.WithExecutor(exec),
//	    restcore.WithDocs(""),
//	)
//
// Feed it requests from your transport (or use httpbridge for net/http and
// fasthttp):
//
//	srv.Dispatch(ctx, req, restcore.NewRequestContext(), callback)
//
// Dispatch returns as soon as the request has been handed to its owner; the
// outcome arrives later, exactly once, on the callback.
//
// # Design Philosophy
//
// The package separates concerns into three layers:
//
//   - Non-resource handlers: an ordered chain of pluggable subsystems
//     (documentation, multiplexer, debug delegates) that can claim a
//     request outright
//   - Server: routing resolution, body decoding policy, and completion
//     conversion
//   - Executor: pure resource business logic, reached only when no chain
//     handler claims the request
//
// The chain is assembled once at construction and never mutated, so
// concurrent requests share it without locks. First match wins: when a
// handler claims a request it owns the completion, and nothing after it in
// the chain is consulted.
//
// # Completion Conversion
//
// Resource execution completes with an internal Response or an error. The
// completion adapter distinguishes three cases:
//
//  1. Success: the internal response is converted to a RestResponse using
//     the routing result for response shaping
//  2. ResponseError: an error carrying a pre-built response is rendered
//     through the same response-building path, producing a RestError
//  3. Anything else: passed through unchanged for generic handling
//
// This lets resource code signal rich, typed failures with the same
// machinery as success, while unexpected failures stay inspectable.
//
// Every failure mode, from unknown routes to malformed bodies to panics
// anywhere in dispatch, ends in a well-formed completion. A request never hangs and
// never takes the process down.
package restcore
