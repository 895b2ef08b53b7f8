package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldJobID is the documentation job ID.
	FieldJobID = "job_id"

	// FieldStage is the pipeline stage currently executing.
	FieldStage = "stage"

	// FieldComponent is the component/module name.
	FieldComponent = "component"

	// FieldRepo is the repository reference being processed.
	FieldRepo = "repo"
)

// Metric fields attached per log entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldStatus is the operation or HTTP status.
	FieldStatus = "status"

	// FieldSize is the data size in bytes.
	FieldSize = "size"

	// FieldCount is a generic count field.
	FieldCount = "count"
)
