// Package metrics provides constants used across metric definitions.
package metrics

// Record store operation names used as the "operation" label.
const (
	// OpInitialize represents opening the store and migrating the schema.
	OpInitialize = "initialize"
	// OpExists represents duplicate lookups.
	OpExists = "exists"
	// OpUpsert represents insert-or-replace writes.
	OpUpsert = "upsert"
	// OpListAll represents full listing reads.
	OpListAll = "list_all"
	// OpRename represents label updates.
	OpRename = "rename"
	// OpRemove represents deletions.
	OpRemove = "remove"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	// StatusUnavailable marks an export whose share target could not be used.
	StatusUnavailable = "unavailable"
)

// Capture result label values.
const (
	CaptureAccepted  = "accepted"
	CaptureDebounced = "debounced"
	CaptureIgnored   = "ignored"
)

// Histogram bucket configuration constants.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
