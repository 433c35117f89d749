// Package check holds the configuration checks shared by the sync and async
// operator factories.
package check

import (
	apperrors "github.com/kbukum/transducekit/errors"
)

// BatchSize rejects batch sizes below one.
func BatchSize(size int) error {
	if size < 1 {
		return apperrors.InvalidConfig("batching", "size must be at least 1").
			WithDetail("size", size)
	}
	return nil
}

// RepeatCount rejects negative repetition counts.
func RepeatCount(count int) error {
	if count < 0 {
		return apperrors.InvalidConfig("repeating", "count cannot be negative").
			WithDetail("count", count)
	}
	return nil
}

// Position rejects nth positions below one (positions are 1-indexed).
func Position(n int) error {
	if n < 1 {
		return apperrors.InvalidConfig("nth", "position must be at least 1").
			WithDetail("n", n)
	}
	return nil
}
