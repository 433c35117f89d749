// Package resilience retries transient failures of external sources.
//
// Retry runs a function with exponential backoff and jitter. By default only
// errors marked retryable (SOURCE_FAILED, SINK_FAILED, TIMEOUT) are retried,
// and context cancellation always stops the loop. RetryingSource applies the
// same policy to every Next of a source.Iterator:
//
//	src := resilience.RetryingSource(kafka.DecodeJSON(msgs), resilience.DefaultRetryConfig())
//	result, err := engine.RunAsync(ctx, "enrich", src)
package resilience
