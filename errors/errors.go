package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code and message.
// Details and cause are ignored so a sentinel matches every occurrence.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// InvalidConfig creates an AppError for an operator option that cannot be used.
func InvalidConfig(operator, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("%s: %s", operator, reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"operator": operator},
	}
}

// Cardinality creates an AppError for a broken item-count constraint.
func Cardinality(message string) *AppError {
	return &AppError{
		Code: ErrCodeCardinality, Message: message,
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
	}
}

// ShapeMismatch creates an AppError for an accumulator that cannot be windowed.
func ShapeMismatch(message string) *AppError {
	return &AppError{
		Code: ErrCodeShapeMismatch, Message: message,
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Canceled creates an AppError for a run stopped by its context.
func Canceled(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: fmt.Sprintf("%s was canceled", operation),
		HTTPStatus: 499, Retryable: false, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// Timeout creates a new AppError for a run that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The run took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// SourceFailed creates an AppError for a source that failed to produce an item.
func SourceFailed(source string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSourceFailed, Message: fmt.Sprintf("reading from %s failed", source),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
		Details: map[string]any{"source": source},
	}
}

// SinkFailed creates an AppError for a collector that failed to store an item.
func SinkFailed(sink string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSinkFailed, Message: fmt.Sprintf("writing to %s failed", sink),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
		Details: map[string]any{"sink": sink},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Wrap converts any error into an AppError. AppErrors anywhere in the chain
// are returned as-is, context errors map to CANCELED/TIMEOUT and everything
// else becomes INTERNAL_ERROR with the original as cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return Timeout("run").WithCause(err)
	case stderrors.Is(err, context.Canceled):
		return Canceled("run", err)
	}
	return Internal(err)
}
