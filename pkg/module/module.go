// Package module mounts independently routed HTTP modules under
// single-segment path prefixes, next to a native mux for top-level routes.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/inquest/pkg/middleware"
)

// Module serves a router under a prefix such as "/api". The router sees
// paths with the prefix removed.
type Module struct {
	prefix string
	router http.Handler
	stack  []middleware.Func
}

// New panics unless prefix is a single segment with a leading slash.
func New(prefix string, router http.Handler) *Module {
	if !strings.HasPrefix(prefix, "/") || len(prefix) < 2 || strings.Contains(prefix[1:], "/") {
		panic(fmt.Sprintf("module prefix must be a single segment like /api, got %q", prefix))
	}
	return &Module{prefix: prefix, router: router}
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw. Earlier middleware wraps later middleware.
func (m *Module) Use(mw middleware.Func) {
	m.stack = append(m.stack, mw)
}

func (m *Module) Handler() http.Handler {
	return middleware.Chain(m.router, m.stack...)
}

// Serve strips the prefix and dispatches through the middleware stack.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	inner := new(http.Request)
	*inner = *req
	u := *req.URL
	u.Path, u.RawPath = path, ""
	inner.URL = &u

	m.Handler().ServeHTTP(w, inner)
}

// Router sends each request to the module owning its first path segment,
// or to the native mux when none does. A trailing slash is ignored.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

func NewRouter() *Router {
	return &Router{modules: map[string]*Module{}, native: http.NewServeMux()}
}

func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.native.Handle(pattern, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL)]; ok {
		m.Serve(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func firstSegment(u *url.URL) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return "/" + seg
}
