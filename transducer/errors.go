package transducer

import (
	stderrors "errors"
	"fmt"

	apperrors "github.com/kbukum/transducekit/errors"
)

const (
	msgTooMany      = "too many items"
	msgTooFew       = "too few items"
	msgNotSliceable = "accumulator is not sliceable"
)

// Sentinels for errors.Is. Errors raised at run time carry extra details but
// compare equal to these by code and message.
var (
	ErrTooManyItems = apperrors.Cardinality(msgTooMany)
	ErrTooFewItems  = apperrors.Cardinality(msgTooFew)
	ErrNotSliceable = apperrors.ShapeMismatch(msgNotSliceable)
)

// TooManyItems builds a fresh cardinality error matching ErrTooManyItems.
func TooManyItems(seen int) error {
	return apperrors.Cardinality(msgTooMany).WithDetail("seen", seen)
}

// TooFewItems builds a fresh cardinality error matching ErrTooFewItems.
func TooFewItems() error {
	return apperrors.Cardinality(msgTooFew).WithDetail("seen", 0)
}

// NotSliceable builds a fresh shape error matching ErrNotSliceable.
func NotSliceable(operator string, acc any) error {
	return apperrors.ShapeMismatch(msgNotSliceable).
		WithDetail("operator", operator).
		WithDetail("type", fmt.Sprintf("%T", acc))
}

// Panicked builds the error Exit receives when a run unwinds with a panic.
// It matches ErrPanicked.
func Panicked(v any) error {
	return apperrors.Internal(fmt.Errorf("%w: %v", ErrPanicked, v))
}

// ErrPanicked is reachable with errors.Is from the error built by Panicked.
var ErrPanicked = stderrors.New("transduction panicked")
