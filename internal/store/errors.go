package store

import (
	"errors"
	"fmt"

	"github.com/JaimeStill/inquest/internal/findings"
)

// ErrTxDone is returned by operations on a committed or rolled back Tx.
var ErrTxDone = errors.New("transaction already finished")

func transitionError(from, to findings.Status) error {
	return fmt.Errorf("%w: %s to %s", findings.ErrInvalidTransition, from, to)
}
