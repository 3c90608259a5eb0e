// Package errors provides custom error types for the wordsync module.
package errors

import (
	"errors"
	"fmt"
)

// Code represents the type of failure that occurred.
type Code string

const (
	CodeNetworkFailure    Code = "NETWORK_FAILURE"
	CodeStorageFailure    Code = "STORAGE_FAILURE"
	CodeValidationFailure Code = "VALIDATION_FAILURE"
	CodeCorruptRecord     Code = "CORRUPT_RECORD"
)

// Operation represents the sync operation during which an error occurred.
type Operation string

const (
	OpSync     Operation = "sync"
	OpFlush    Operation = "flush"
	OpPull     Operation = "pull"
	OpSave     Operation = "save"
	OpDelete   Operation = "delete"
	OpRead     Operation = "read"
	OpWrite    Operation = "write"
	OpInit     Operation = "initialize"
	OpEnqueue  Operation = "enqueue"
	OpDrain    Operation = "drain"
	OpQuery    Operation = "query"
	OpUpsert   Operation = "upsert"
	OpValidate Operation = "validate"
)

// SyncError represents an error that occurred during cache access or
// synchronization.
type SyncError struct {
	// Operation during which the error occurred.
	Op Operation

	// Component that generated the error (e.g. "cache-store", "rest-remote").
	Component string

	// Underlying error.
	Err error

	// Whether the operation can be retried.
	Retryable bool

	// Error code for the failure type.
	Code Code
}

func (e *SyncError) Error() string {
	var msg string
	if e.Component != "" {
		msg = fmt.Sprintf("%s operation failed in %s component", e.Op, e.Component)
	} else {
		msg = fmt.Sprintf("%s operation failed", e.Op)
	}

	if e.Code != "" {
		msg += fmt.Sprintf(" [%s]", e.Code)
	}

	return msg + fmt.Sprintf(": %v", e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// New creates a new SyncError.
func New(op Operation, err error) *SyncError {
	return &SyncError{
		Op:  op,
		Err: err,
	}
}

// NewWithComponent creates a new SyncError with component information.
func NewWithComponent(op Operation, component string, err error) *SyncError {
	return &SyncError{
		Op:        op,
		Component: component,
		Err:       err,
	}
}

// NewNetworkError creates a new network-related SyncError. Network failures
// are always retryable: the pending queue exists to replay them.
func NewNetworkError(op Operation, component string, cause error) *SyncError {
	return &SyncError{
		Code:      CodeNetworkFailure,
		Op:        op,
		Component: component,
		Err:       cause,
		Retryable: true,
	}
}

// NewStorageError creates a new persistence-related SyncError.
func NewStorageError(op Operation, component string, cause error) *SyncError {
	return &SyncError{
		Code:      CodeStorageFailure,
		Op:        op,
		Component: component,
		Err:       cause,
		Retryable: true,
	}
}

// NewValidationError creates a new validation-related SyncError.
// Validation failures are never retryable.
func NewValidationError(op Operation, cause error) *SyncError {
	return &SyncError{
		Code:      CodeValidationFailure,
		Op:        op,
		Err:       cause,
		Retryable: false,
	}
}

// NewCorruptRecordError marks a stored record that could not be decoded.
// Callers treat these as "record absent", never as fatal.
func NewCorruptRecordError(op Operation, component string, cause error) *SyncError {
	return &SyncError{
		Code:      CodeCorruptRecord,
		Op:        op,
		Component: component,
		Err:       cause,
		Retryable: false,
	}
}

// IsRetryable checks if an error is a retryable SyncError.
func IsRetryable(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Retryable
	}
	return false
}

// IsCode checks whether err carries the given error code.
func IsCode(err error, code Code) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Code == code
	}
	return false
}
