package processor

import (
	"errors"
	"net/http"
)

var (
	ErrPassFailed   = errors.New("batch pass failed")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// MapHTTPStatus maps processor errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, ErrPassFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
