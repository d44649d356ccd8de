package scheduler

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inquest/internal/adapters"
	"github.com/JaimeStill/inquest/internal/sources"
)

var (
	ErrAlreadyRunning  = errors.New("run already in progress")
	ErrRunFailed       = errors.New("scrape run failed")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrUnknownTask     = errors.New("unknown task")
)

// MapHTTPStatus maps scheduler errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSchedule):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, adapters.ErrUnknownAdapter), errors.Is(err, adapters.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRunFailed):
		return http.StatusBadGateway
	case errors.Is(err, sources.ErrNotFound), errors.Is(err, sources.ErrInactive):
		return sources.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
