// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation type constants understood by the Recorder implementations.
const (
	// OpDbQuery represents database read operations.
	OpDbQuery = "db_query"
	// OpDbInsert represents database insert operations.
	OpDbInsert = "db_insert"
	// OpDbUpdate represents database update operations.
	OpDbUpdate = "db_update"
	// OpTransaction represents transaction commits.
	OpTransaction = "transaction"
	// OpRecord represents the handling of one game record.
	OpRecord = "record"
	// OpFile represents the import of one archive file.
	OpFile = "file"
	// OpParse represents a movetext parse.
	OpParse = "parse"
)

// Label value constants used for metric labels.
const (
	// StatusSuccess marks a successful operation.
	StatusSuccess = "success"
	// StatusError marks a failed operation.
	StatusError = "error"

	// DirectionForward labels the notation to id cache.
	DirectionForward = "forward"
	// DirectionReverse labels the id to notation cache.
	DirectionReverse = "reverse"

	// TableUnknown is used when an operation names no table.
	TableUnknown = "unknown"
)

// Histogram bucket configuration constants.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001
	// BucketStart1s is the starting bucket for 1s histograms.
	BucketStart1s = 1.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)

// Time and conversion constants.
const (
	// ShutdownTimeout is the timeout for graceful shutdown operations.
	ShutdownTimeout = 5 * time.Second
)

// String parsing constants.
const (
	// SplitPartsCount is the expected number of parts when splitting operation strings.
	SplitPartsCount = 2
)
