// Package metrics provides custom Prometheus metrics for the opening book importer.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on concrete metric implementations,
// so tests can pass a recorder that only counts.
type Recorder interface {
	// RecordOperation records an operation with its status.
	// The operation may carry a table suffix, e.g. "db_insert:notations".
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}

// CacheRecorder receives hit, miss and size updates from a lookup cache.
type CacheRecorder interface {
	RecordCacheHit(direction string)
	RecordCacheMiss(direction string)
	SetCacheSize(direction string, size int)
}

// NopRecorder discards everything. It satisfies both Recorder and CacheRecorder.
type NopRecorder struct{}

func (NopRecorder) RecordOperation(string, string) {}

func (NopRecorder) RecordDuration(string, float64) {}

func (NopRecorder) RecordError(string, string) {}

func (NopRecorder) RecordCacheHit(string) {}

func (NopRecorder) RecordCacheMiss(string) {}

func (NopRecorder) SetCacheSize(string, int) {}
