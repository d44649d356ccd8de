package analyses

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/repository"
)

var (
	ErrNotFound  = errors.New("analysis not found")
	ErrDuplicate = errors.New("analysis already exists")
	ErrInvalid   = errors.New("analysis requires a finding, provider, and model")
)

// StoreErrors maps missing rows and unique violations onto analysis errors.
var StoreErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
