package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/handlers"
)

var errGone = errors.New("gone")

func responder() handlers.Responder {
	return handlers.NewResponder(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		func(err error) int {
			if errors.Is(err, errGone) {
				return http.StatusNotFound
			}
			return http.StatusInternalServerError
		},
	)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestResponderReply(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      int
		wantError string
	}{
		{"success", nil, http.StatusCreated, ""},
		{"mapped error", errGone, http.StatusNotFound, "gone"},
		{"unmapped error", errors.New("pool exhausted"), http.StatusInternalServerError, "pool exhausted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			responder().Reply(rec, http.StatusCreated, map[string]int{"scraped": 3}, tt.err)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if tt.wantError != "" {
				if got := errorBody(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
			}
		})
	}
}

func TestResponderEmpty(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", errGone, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			responder().Empty(rec, tt.err)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.err == nil && rec.Body.Len() != 0 {
				t.Errorf("body = %q, want empty", rec.Body)
			}
		})
	}
}

func TestResponderWithID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"uuid", "/findings/" + id.String(), http.StatusOK},
		{"malformed", "/findings/42", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID
			mux := http.NewServeMux()
			mux.HandleFunc("GET /findings/{id}", responder().WithID(func(w http.ResponseWriter, _ *http.Request, id uuid.UUID) {
				got = id
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.target, nil))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && got != id {
				t.Errorf("id = %s, want %s", got, id)
			}
			if tt.want == http.StatusBadRequest && !strings.Contains(errorBody(t, rec), "invalid id") {
				t.Errorf("error body does not name the invalid id")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type command struct {
		Name  string `json:"name"`
		Limit int    `json:"limit"`
	}

	tests := []struct {
		name    string
		body    io.Reader
		want    command
		wantErr bool
	}{
		{"object", strings.NewReader(`{"name":"nsw","limit":5}`), command{Name: "nsw", Limit: 5}, false},
		{"no body", nil, command{}, false},
		{"malformed", strings.NewReader(`{"name":`), command{}, true},
		{"wrong type", strings.NewReader(`{"limit":"five"}`), command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/run", tt.body)
			got, err := handlers.Decode[command](r)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRespondErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondError(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), http.StatusConflict, errors.New("name taken"))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if got := errorBody(t, rec); got != "name taken" {
		t.Errorf("error = %q, want %q", got, "name taken")
	}
}
