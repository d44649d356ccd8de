package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/inquest/pkg/middleware"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Func {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := middleware.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("recover"), tag("log"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "recover,log,handler" {
		t.Errorf("order = %v, want [recover log handler]", order)
	}
}

func TestCORS(t *testing.T) {
	const dashboard = "https://review.inquest.test"

	tests := []struct {
		name        string
		cfg         middleware.CORSConfig
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantCreds   string
		wantStatus  int
		wantHandled bool
	}{
		{
			name:   "disabled",
			cfg:    middleware.CORSConfig{Origins: []string{dashboard}},
			method: "GET", origin: dashboard,
			wantStatus: http.StatusOK, wantHandled: true,
		},
		{
			name:   "allowed origin",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{dashboard}, AllowCredentials: true},
			method: "GET", origin: dashboard,
			wantOrigin: dashboard, wantCreds: "true", wantStatus: http.StatusOK, wantHandled: true,
		},
		{
			name:   "other origin",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{dashboard}},
			method: "GET", origin: "https://elsewhere.test",
			wantStatus: http.StatusOK, wantHandled: true,
		},
		{
			name:   "wildcard drops credentials",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{"*"}, AllowCredentials: true},
			method: "GET", origin: "https://elsewhere.test",
			wantOrigin: "https://elsewhere.test", wantStatus: http.StatusOK, wantHandled: true,
		},
		{
			name:   "preflight answered",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{dashboard}},
			method: "OPTIONS", origin: dashboard, preflight: true,
			wantOrigin: dashboard, wantStatus: http.StatusNoContent,
		},
		{
			name:   "plain options passes through",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{dashboard}},
			method: "OPTIONS", origin: dashboard,
			wantOrigin: dashboard, wantStatus: http.StatusOK, wantHandled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err != nil {
				t.Fatalf("Finalize error: %v", err)
			}

			var handled bool
			h := middleware.CORS(&cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handled = true
			}))

			req := httptest.NewRequest(tt.method, "/findings", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if handled != tt.wantHandled {
				t.Errorf("handled = %v, want %v", handled, tt.wantHandled)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCreds)
			}
			if tt.wantOrigin != "" {
				if got := rec.Header().Get("Access-Control-Max-Age"); got != "3600" {
					t.Errorf("Max-Age = %q, want 3600", got)
				}
			}
		})
	}
}

func TestLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var handlerCalled bool
	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("inner handler should have been called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestCORSConfigFinalizeDefaults(t *testing.T) {
	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if len(cfg.AllowedMethods) != 5 {
		t.Errorf("allowed_methods: got %d, want 5", len(cfg.AllowedMethods))
	}
	if len(cfg.AllowedHeaders) != 2 {
		t.Errorf("allowed_headers: got %d, want 2", len(cfg.AllowedHeaders))
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.com, http://b.com")
	t.Setenv("TEST_CORS_CREDS", "true")

	env := &middleware.CORSEnv{
		Enabled:          "TEST_CORS_ENABLED",
		Origins:          "TEST_CORS_ORIGINS",
		AllowCredentials: "TEST_CORS_CREDS",
	}

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if len(cfg.Origins) != 2 {
		t.Fatalf("origins: got %d, want 2", len(cfg.Origins))
	}
	if cfg.Origins[0] != "http://a.com" || cfg.Origins[1] != "http://b.com" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if !cfg.AllowCredentials {
		t.Error("allow_credentials should be true")
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Enabled:        false,
		Origins:        []string{"http://base.com"},
		AllowedMethods: []string{"GET"},
		MaxAge:         3600,
	}

	overlay := middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://overlay.com"},
		MaxAge:  7200,
	}

	base.Merge(&overlay)

	if !base.Enabled {
		t.Error("enabled should be true after merge")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "http://overlay.com" {
		t.Errorf("origins: got %v", base.Origins)
	}
	if base.MaxAge != 7200 {
		t.Errorf("max_age: got %d, want 7200", base.MaxAge)
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/findings/missing", nil))

	out := buf.String()
	if !strings.Contains(out, "status=404") {
		t.Errorf("log output missing status: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("client error should log at warn: %s", out)
	}
}

func TestObserveReportsPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /findings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	var (
		gotMethod, gotRoute string
		gotStatus           int
	)
	handler := middleware.Observe(func(method, route string, status int, _ time.Duration) {
		gotMethod, gotRoute, gotStatus = method, route, status
	})(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/findings/abc", nil))

	if gotMethod != "GET" {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotRoute != "GET /findings/{id}" {
		t.Errorf("route = %q, want %q", gotRoute, "GET /findings/{id}")
	}
	if gotStatus != http.StatusAccepted {
		t.Errorf("status = %d, want 202", gotStatus)
	}
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCORSConfigFinalizeEnvLists(t *testing.T) {
	t.Setenv("TEST_CORS_METHODS", "GET, POST")
	t.Setenv("TEST_CORS_MAX_AGE", "60")

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{
		AllowedMethods: "TEST_CORS_METHODS",
		MaxAge:         "TEST_CORS_MAX_AGE",
	}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if len(cfg.AllowedMethods) != 2 || cfg.AllowedMethods[1] != "POST" {
		t.Errorf("allowed_methods: got %v", cfg.AllowedMethods)
	}
	if cfg.MaxAge != 60 {
		t.Errorf("max_age: got %d, want 60", cfg.MaxAge)
	}
}
