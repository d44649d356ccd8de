package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/repository"
)

var (
	ErrNotFound     = errors.New("prompt override not found")
	ErrDuplicate    = errors.New("prompt override name already in use")
	ErrInvalidStage = errors.New("stage must be classify, extract, human_factors, or draft")
	ErrInvalid      = errors.New("invalid prompt override")
)

// StoreErrors maps missing rows and unique violations onto prompt override errors.
var StoreErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStage), errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
