package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/inquest/pkg/routes"
)

// tag writes name as the response body so tests can see which route served.
func tag(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(name))
	}
}

func findingsGroup() routes.Group {
	return routes.Group{
		Prefix: "/findings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: tag("list")},
			{Method: "GET", Pattern: "/{id}", Handler: tag("find")},
			{Method: "POST", Pattern: "/{id}/exclude", Handler: tag("exclude")},
		},
		Children: []routes.Group{{
			Prefix: "/{id}/analyses",
			Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: tag("analyses")}},
		}},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, findingsGroup())

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"root", "GET", "/findings", http.StatusOK, "list"},
		{"by id", "GET", "/findings/42", http.StatusOK, "find"},
		{"action", "POST", "/findings/42/exclude", http.StatusOK, "exclude"},
		{"nested group", "GET", "/findings/42/analyses", http.StatusOK, "analyses"},
		{"wrong method", "DELETE", "/findings/42", http.StatusMethodNotAllowed, ""},
		{"unknown path", "GET", "/sources", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("served by %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	got := routes.Patterns(findingsGroup(), routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{{Method: "GET", Pattern: "/{key...}", Handler: tag("archive")}},
	})

	want := []string{
		"GET /findings",
		"GET /findings/{id}",
		"POST /findings/{id}/exclude",
		"GET /findings/{id}/analyses",
		"GET /archive/{key...}",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Patterns = %v, want %v", got, want)
	}
}
