// Package router decides which document domain should answer a query.
//
// The router is the first pipeline stage. It asks the chat model for a
// constrained JSON choice among the registered domains, retries once with a
// stricter instruction on malformed output, and reports ErrRoutingFailure
// rather than guessing. Mapping a failed or "unknown" decision to a default
// domain is the caller's policy, not the router's.
//
// Usage:
//
//	r, err := router.NewRouter(provider)
//	decision, err := r.Route(ctx, "How many vacation days do I get?", registry.Domains())
package router
