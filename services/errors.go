package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist for the user.
var ErrNotFound = errors.New("not found")

// ValidationError rejects input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StorageError means the store was unavailable or rejected the operation.
// Nothing of the operation was committed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// storageErr wraps err unless it already carries a domain meaning.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var v *ValidationError
	var s *StorageError
	if errors.As(err, &v) || errors.As(err, &s) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
