package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline construction and execution errors
const (
	// ErrCodeInvalidConfig indicates an operator factory received an unusable configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeCardinality indicates an item-count constraint was broken.
	ErrCodeCardinality ErrorCode = "CARDINALITY_VIOLATION"
	// ErrCodeShapeMismatch indicates the accumulator cannot be measured or sliced.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Source, sink and runtime errors
const (
	// ErrCodeCanceled indicates the run was canceled by its context.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeTimeout indicates the run exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeSourceFailed indicates the item source could not produce the next item.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
	// ErrCodeSinkFailed indicates a collector could not store an item.
	ErrCodeSinkFailed ErrorCode = "SINK_FAILED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:      true,
	ErrCodeSourceFailed: true,
	ErrCodeSinkFailed:   true,
	ErrCodeInternal:     false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
