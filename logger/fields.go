package logger

import "time"

// Standard field keys.
const (
	FieldComponent = "component"
	FieldService   = "service"
	FieldRunID     = "run_id"
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldPipeline  = "pipeline"
	FieldItems     = "items"
	FieldReduced   = "reduced"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs. Non-string keys
// and a trailing odd value are ignored.
//
//	logger.Info("run finished", logger.Fields(logger.FieldItems, 42))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// RunFields describes a finished transduction.
func RunFields(pipeline string, items int, reduced bool, d time.Duration) map[string]any {
	return map[string]any{
		FieldPipeline: pipeline,
		FieldItems:    items,
		FieldReduced:  reduced,
		FieldDuration: d.Milliseconds(),
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields[FieldError] = err.Error()
	return fields
}
