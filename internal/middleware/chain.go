// Package middleware provides HTTP middleware for authentication,
// rate limiting, logging, and panic recovery, and the named stack that
// orders them by a priority list.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Names of the middleware this package ships. They are the identifiers the
// priority list refers to.
const (
	NameRequestID = "request_id"
	NameRecover   = "recover"
	NameMetrics   = "metrics"
	NameLogging   = "logging"
	NameAuth      = "auth"
	NameRateLimit = "ratelimit"
)

// Chain composes middleware in the order given. The first middleware
// in the list is the outermost (runs first on request, last on response).
//
//	chain(handler, logging, auth, ratelimit)
//	// Request order:  logging → auth → ratelimit → handler
//	// Response order: handler → ratelimit → auth → logging
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
