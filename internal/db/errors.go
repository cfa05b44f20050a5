package db

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced snapshot, profile or draft does not exist.
var ErrNotFound = errors.New("not found")

// StorageError represents a failed read or write against a store
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("storage %s failed", e.Op)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Wrap returns a StorageError for op, or nil when err is nil. ErrNotFound passes through unchanged.
func Wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Cause: err}
}
