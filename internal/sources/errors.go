package sources

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/repository"
)

var (
	ErrNotFound  = errors.New("source not found")
	ErrDuplicate = errors.New("source code already exists")
	ErrInactive  = errors.New("source is not active")
	ErrInvalid   = errors.New("invalid source definition")
)

// StoreErrors maps missing rows and unique violations onto source errors.
var StoreErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

// MapHTTPStatus maps source domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInactive):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
