package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for state file operations.
var (
	// ErrNotFound indicates a record was not found in a state file.
	ErrNotFound = errors.New("not found")
	// ErrStateCorrupt indicates a state file could not be parsed.
	// Recovery requires manual repair; the file is never overwritten.
	ErrStateCorrupt = errors.New("state file corrupt")
	// ErrLockTimeout indicates a timeout acquiring a state file lock,
	// usually because another invocation is still running.
	ErrLockTimeout = errors.New("timed out waiting for state lock")
)

// StateError describes a failed state file operation.
type StateError struct {
	Op   string // "read", "write", "lock"
	File string // state file path
	Err  error
}

func (e *StateError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("state %s %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("state %s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
