package workflow

import "errors"

var (
	ErrNoContent   = errors.New("finding has no analysable content")
	ErrStageFailed = errors.New("pipeline stage failed")
)
