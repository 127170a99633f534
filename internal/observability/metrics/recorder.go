// Package metrics provides custom Prometheus metrics for qrregister.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on a concrete collector so tests can
// pass NoopRecorder.
type Recorder interface {
	// RecordOperation records an operation with its status ("success", "error").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string) {}
func (NoopRecorder) RecordDuration(string, float64) {}
func (NoopRecorder) RecordError(string, string)     {}

var _ Recorder = NoopRecorder{}
