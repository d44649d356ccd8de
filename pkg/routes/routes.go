// Package routes declares handler tables that are registered onto a
// net/http ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds an HTTP method and a pattern, relative to its Group, to a
// handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group shares a path prefix across its routes and nested groups.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Walk calls fn with the full ServeMux pattern of every route in groups,
// depth first, in declaration order.
func Walk(fn func(pattern string, h http.HandlerFunc), groups ...Group) {
	for _, g := range groups {
		walk("", g, fn)
	}
}

func walk(prefix string, g Group, fn func(string, http.HandlerFunc)) {
	prefix += g.Prefix
	for _, r := range g.Routes {
		fn(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		walk(prefix, child, fn)
	}
}

// Register adds every route in groups to mux. ServeMux panics on
// conflicting patterns.
func Register(mux *http.ServeMux, groups ...Group) {
	Walk(func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, h)
	}, groups...)
}

// Patterns lists the patterns Register would add, in order.
func Patterns(groups ...Group) []string {
	var out []string
	Walk(func(pattern string, _ http.HandlerFunc) {
		out = append(out, pattern)
	}, groups...)
	return out
}
