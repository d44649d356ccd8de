// Package middleware provides the HTTP middleware the operator API runs
// behind: panic recovery, CORS, request logging, and request observation.
package middleware

import "net/http"

// Func wraps a handler.
type Func func(http.Handler) http.Handler

// Chain wraps h so the first of mws runs first.
func Chain(h http.Handler, mws ...Func) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
