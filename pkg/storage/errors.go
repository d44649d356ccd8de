package storage

import (
	"errors"
	"net/http"
)

// Archive errors. Key errors are returned before any backend is touched.
var (
	ErrNotFound       = errors.New("archived report not found")
	ErrEmptyKey       = errors.New("archive key is empty")
	ErrInvalidKey     = errors.New("archive key escapes its prefix")
	ErrUnknownBackend = errors.New("unknown archive backend")
	ErrDisabled       = errors.New("report archive disabled")
)

var statuses = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrEmptyKey, http.StatusBadRequest},
	{ErrInvalidKey, http.StatusBadRequest},
	{ErrDisabled, http.StatusServiceUnavailable},
}

// MapHTTPStatus translates archive errors for the report download route.
func MapHTTPStatus(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
