package adapters

import "errors"

var (
	ErrUnknownAdapter = errors.New("unknown adapter")
	ErrInvalidConfig  = errors.New("invalid adapter config")
	ErrParse          = errors.New("parse failed")
)
