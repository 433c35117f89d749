// Package errors provides the structured error type shared by transducekit.
//
// Every failure raised by the engine itself (configuration, cardinality,
// accumulator shape) is an *AppError carrying a machine-readable code, so
// callers can branch with errors.Is against a sentinel or inspect Code.
// Errors returned by user callbacks are never converted and flow through
// untouched.
package errors
