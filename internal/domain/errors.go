package domain

import (
	"errors"
	"fmt"
)

// ErrPositionNotFound is returned when a P&L query references an
// unknown position id.
var ErrPositionNotFound = errors.New("position not found")

// ValidationKind distinguishes the whole-submission rejection reasons.
type ValidationKind string

const (
	ValidationBidCount   ValidationKind = "bid-count-exceeded"
	ValidationCutoff     ValidationKind = "cutoff-violated"
	ValidationStructural ValidationKind = "structural"
)

// ValidationError rejects an entire submission before any bid is
// processed. No state changes when one is returned.
type ValidationError struct {
	Kind ValidationKind
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
