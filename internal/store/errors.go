package store

import (
	"fmt"
)

// StorageError represents a failed read or write of a collection
type StorageError struct {
	Type       string
	Operation  string
	Collection Collection
	Message    string
	Cause      error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s] during %s on %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Collection, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s] during %s on %s: %s",
		e.Type, e.Operation, e.Collection, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage error types
const (
	StorageErrorTypeReadFailed   = "read_failed"
	StorageErrorTypeWriteFailed  = "write_failed"
	StorageErrorTypeDecodeFailed = "decode_failed"
	StorageErrorTypeEncodeFailed = "encode_failed"
)

// NewStorageReadError creates an error for backend read failures
func NewStorageReadError(c Collection, cause error) *StorageError {
	return &StorageError{
		Type:       StorageErrorTypeReadFailed,
		Operation:  "load",
		Collection: c,
		Message:    "failed to read collection",
		Cause:      cause,
	}
}

// NewStorageWriteError creates an error for backend write failures
func NewStorageWriteError(c Collection, cause error) *StorageError {
	return &StorageError{
		Type:       StorageErrorTypeWriteFailed,
		Operation:  "save",
		Collection: c,
		Message:    "failed to write collection",
		Cause:      cause,
	}
}

// NewStorageDecodeError creates an error for documents that are not valid JSON collections
func NewStorageDecodeError(c Collection, cause error) *StorageError {
	return &StorageError{
		Type:       StorageErrorTypeDecodeFailed,
		Operation:  "load",
		Collection: c,
		Message:    "stored document is corrupt",
		Cause:      cause,
	}
}

// NewStorageEncodeError creates an error for records that cannot be serialized
func NewStorageEncodeError(c Collection, cause error) *StorageError {
	return &StorageError{
		Type:       StorageErrorTypeEncodeFailed,
		Operation:  "save",
		Collection: c,
		Message:    "failed to encode collection",
		Cause:      cause,
	}
}
