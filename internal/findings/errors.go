package findings

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/repository"
)

var (
	ErrNotFound          = errors.New("finding not found")
	ErrDuplicate         = errors.New("finding already captured")
	ErrInvalid           = errors.New("finding requires source, external id, title, and source url")
	ErrInvalidStatus     = errors.New("invalid finding status")
	ErrInvalidTransition = errors.New("invalid finding status transition")
)

// StoreErrors maps missing rows and unique violations onto finding errors.
var StoreErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

// MapHTTPStatus maps finding domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
