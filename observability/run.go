package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/transducekit/errors"
)

// Run statuses.
const (
	StatusOK      = "ok"
	StatusReduced = "reduced"
	StatusError   = "error"
)

// Run tracks one transduction for tracing and metrics. Either dependency
// may be nil.
type Run struct {
	Pipeline string
	ID       string
	Start    time.Time

	tracer  trace.Tracer
	metrics *Metrics
	span    trace.Span
}

// StartRun opens a run span as a child of any span in ctx.
func StartRun(ctx context.Context, tracer trace.Tracer, metrics *Metrics, pipeline, id string) (context.Context, *Run) {
	r := &Run{Pipeline: pipeline, ID: id, Start: time.Now(), tracer: tracer, metrics: metrics}
	if tracer != nil {
		ctx, r.span = tracer.Start(ctx, SpanRun, trace.WithAttributes(
			attribute.String(AttrPipeline, pipeline),
			attribute.String(AttrRunID, id),
		))
	}
	return ctx, r
}

// End closes the span and records metrics for the run outcome.
func (r *Run) End(ctx context.Context, items int, reduced bool, err error) {
	status := StatusOK
	switch {
	case err != nil:
		status = StatusError
	case reduced:
		status = StatusReduced
	}

	if r.span != nil {
		r.span.SetAttributes(
			attribute.Int(AttrItems, items),
			attribute.Bool(AttrReduced, reduced),
			attribute.String(AttrStatus, status),
		)
		if err != nil {
			r.span.SetAttributes(attribute.String(AttrKind, ErrorKind(err)))
			SetSpanError(trace.ContextWithSpan(ctx, r.span), err)
		}
		r.span.End()
	}

	if r.metrics != nil {
		r.metrics.RecordRun(ctx, r.Pipeline, status, items, time.Since(r.Start))
		if err != nil {
			r.metrics.RecordError(ctx, r.Pipeline, ErrorKind(err))
		}
	}
}

// ErrorKind classifies err for the error_kind attribute: the lower-cased
// AppError code, "canceled", "timeout" or "callback" for anything else.
func ErrorKind(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return strings.ToLower(string(appErr.Code))
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "callback"
	}
}
