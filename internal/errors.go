package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrAborted is returned when a stream is cancelled by its consumer
	ErrAborted = errors.New("stream aborted")
	// ErrIdeaNotFound is returned when an idea id is not in the current batch
	ErrIdeaNotFound = errors.New("idea not found")
	// ErrRecordNotFound is returned by repositories for unknown keys
	ErrRecordNotFound = errors.New("record not found")
	// ErrDeepDiveContract is returned when a deep-dive response has no valid report
	ErrDeepDiveContract = errors.New("deep dive response did not contain a valid report")
)

// IsAbort reports whether err is a consumer-initiated abort rather than a failure
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted)
}

// StorageError represents errors accessing the session store files
type StorageError struct {
	Path string
	Op   string // "read", "write", "mkdir"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing data
type ParseError struct {
	Source string // "idea-envelope", "deep-dive-envelope", "session-store"
	Key    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports a structurally invalid JSON document
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at %s: %s", e.Path, e.Reason)
}

// TransportError represents a failed request to the streaming backend
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error [%s] status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("transport error [%s]: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError represents a failed durable-store operation for one idea
type PersistenceError struct {
	Op          string
	Fingerprint string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error [%s] %s: %v", e.Op, e.Fingerprint, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
