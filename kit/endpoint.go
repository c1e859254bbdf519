package kit

import (
	"context"

	"github.com/hazyhaar/pagekit/idgen"
)

// Endpoint is the transport-agnostic call shape: a typed request in, a
// typed response out. Both the HTTP bridge and the MCP tools funnel
// into Endpoints.
type Endpoint func(ctx context.Context, request any) (any, error)

// Middleware wraps an Endpoint with extra behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is outermost:
// Chain(a, b, c)(e) runs a before b before c before e.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// EnsureTraceID stamps a fresh trace ID on requests that arrive
// without one, so every invocation can be correlated in the trace
// store.
func EnsureTraceID(gen idgen.Generator) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			if GetTraceID(ctx) == "" {
				ctx = WithTraceID(ctx, gen())
			}
			return next(ctx, req)
		}
	}
}
