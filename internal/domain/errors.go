package domain

import (
	"fmt"
	"strings"
)

// ValidationError lists every rule an article violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NotFoundError is returned when an operation references an unknown article id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("article not found: %s", e.ID)
}

// StorageError wraps a durable cache failure.
type StorageError struct {
	Op  string // get | set | remove
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SourceError wraps a remote fetch or parse failure.
type SourceError struct {
	Endpoint string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("remote source %s: %v", e.Endpoint, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
