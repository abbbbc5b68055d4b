// Package kit holds the transport-agnostic endpoint plumbing shared by the
// MCP and HTTP surfaces: an endpoint is a function, middleware wraps it,
// transports adapt it.
package kit

import "context"

// Endpoint is one operation: typed request in, typed response out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(next Endpoint) Endpoint

// Chain composes middlewares; the first argument is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
