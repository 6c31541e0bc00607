package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a session or result does not exist (or
// has been soft-deleted).
var ErrNotFound = errors.New("not found")

// StorageError wraps a backend failure with the backend name and the
// operation that failed.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s backend during %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
