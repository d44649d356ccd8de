package fetch

import "errors"

var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrStatus      = errors.New("unexpected http status")
	ErrTooLarge    = errors.New("response body exceeds limit")
	ErrDisallowed  = errors.New("disallowed by robots.txt")
	ErrRender      = errors.New("render failed")

	// ErrNoExtractor is a configuration error: none of the configured PDF
	// extractors is known.
	ErrNoExtractor   = errors.New("no usable pdf extractor configured")
	ErrExtractFailed = errors.New("pdf text extraction failed")
)
