package posts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/repository"
)

var (
	ErrNotFound          = errors.New("post not found")
	ErrDuplicate         = errors.New("post slug or analysis already used")
	ErrInvalid           = errors.New("post requires analysis, finding, slug, and title")
	ErrInvalidStatus     = errors.New("invalid post status")
	ErrInvalidTransition = errors.New("invalid post review transition")
	ErrReviewerRequired  = errors.New("reviewer is required")
)

// StoreErrors maps missing rows and unique violations onto post errors.
var StoreErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrReviewerRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
