package llm

import "errors"

var (
	ErrNoProvider      = errors.New("no language model provider configured")
	ErrUnknownProvider = errors.New("unknown language model provider")
	ErrProviderStatus  = errors.New("provider returned an error status")
	ErrMalformed       = errors.New("malformed provider response")
)
