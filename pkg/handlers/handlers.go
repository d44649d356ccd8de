// Package handlers holds the JSON reply helpers shared by the domain
// HTTP handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ErrInvalidID reports a path identifier that is not a UUID.
var ErrInvalidID = errors.New("invalid id")

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes err as {"error": "..."}. Server-side failures log at
// error level, rejected requests at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "request failed", "status", status, "error", err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// Responder replies on behalf of one domain handler, translating domain
// errors with that domain's status mapping.
type Responder struct {
	logger *slog.Logger
	status func(error) int
}

func NewResponder(logger *slog.Logger, status func(error) int) Responder {
	return Responder{logger: logger, status: status}
}

// Error writes err with an explicit status.
func (rs Responder) Error(w http.ResponseWriter, status int, err error) {
	RespondError(w, rs.logger, status, err)
}

// Reply writes v with status ok, or err with its mapped status.
func (rs Responder) Reply(w http.ResponseWriter, ok int, v any, err error) {
	if err != nil {
		RespondError(w, rs.logger, rs.status(err), err)
		return
	}
	RespondJSON(w, ok, v)
}

// Empty writes 204 on success, or err with its mapped status.
func (rs Responder) Empty(w http.ResponseWriter, err error) {
	if err != nil {
		RespondError(w, rs.logger, rs.status(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WithID parses the {id} path value before calling next. Malformed IDs
// are rejected with 400.
func (rs Responder) WithID(next func(http.ResponseWriter, *http.Request, uuid.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			rs.Error(w, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrInvalidID, r.PathValue("id")))
			return
		}
		next(w, r, id)
	}
}

// Decode reads a JSON request body into T. A nil or empty body yields
// the zero value.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil || r.ContentLength == 0 {
		return v, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}
