package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/inquest/pkg/module"
)

func TestNewPrefix(t *testing.T) {
	tests := []struct {
		prefix    string
		wantPanic bool
	}{
		{"/api", false},
		{"/archive", false},
		{"", true},
		{"/", true},
		{"api", true},
		{"/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("New(%q) panic = %v, want panic %v", tt.prefix, r, tt.wantPanic)
				}
			}()
			if m := module.New(tt.prefix, http.NewServeMux()); m.Prefix() != tt.prefix {
				t.Errorf("Prefix() = %s, want %s", m.Prefix(), tt.prefix)
			}
		})
	}
}

// echo writes the path the inner router saw and the module it belongs to.
func echo(name string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name + " " + r.URL.Path))
	})
	return mux
}

func TestRouterDispatch(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echo("api")))
	router.Mount(module.New("/archive", echo("archive")))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native /healthz"))
	})
	router.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native /metrics"))
	}))

	tests := []struct {
		path string
		want string
	}{
		{"/api/findings", "api /findings"},
		{"/api/findings/", "api /findings"},
		{"/api", "api /"},
		{"/archive/uk_pfd/2024-0001.pdf", "archive /uk_pfd/2024-0001.pdf"},
		{"/healthz", "native /healthz"},
		{"/metrics", "native /metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("GET %s = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/apiary", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /apiary status = %d, want 404", rec.Code)
	}
}

func TestModuleMiddlewareSeesStrippedPath(t *testing.T) {
	m := module.New("/api", echo("api"))

	var seen []string
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	req := httptest.NewRequest("GET", "/api/posts/slug/a-b", nil)
	m.Serve(httptest.NewRecorder(), req)

	if len(seen) != 1 || seen[0] != "/posts/slug/a-b" {
		t.Errorf("middleware saw %v, want [/posts/slug/a-b]", seen)
	}
	if req.URL.Path != "/api/posts/slug/a-b" {
		t.Errorf("outer request path mutated to %s", req.URL.Path)
	}
}
