package ytpost

import (
	"ytpost/retry"
	"ytpost/storage"
	"ytpost/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytpost.ErrLockTimeout) {
//		fmt.Println("another invocation is still running")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var stateErr *ytpost.StateError
//	if errors.As(err, &stateErr) {
//		fmt.Printf("state %s failed on %s: %v\n", stateErr.Op, stateErr.File, stateErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// StateError wraps errors during state file operations.
	StateError = storage.StateError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrMissingCredentials indicates no usable OAuth credential set was
	// configured.
	ErrMissingCredentials = youtube.ErrMissingCredentials
	// ErrNoVideoID indicates an upload response carried no video ID.
	ErrNoVideoID = youtube.ErrNoVideoID
	// ErrNoCommentID indicates a comment insert response carried no ID.
	ErrNoCommentID = youtube.ErrNoCommentID

	// Storage errors
	// ErrNotFound indicates a record was not found in a state file.
	ErrNotFound = storage.ErrNotFound
	// ErrStateCorrupt indicates a state file could not be parsed.
	ErrStateCorrupt = storage.ErrStateCorrupt
	// ErrLockTimeout indicates a timeout acquiring a state file lock.
	ErrLockTimeout = storage.ErrLockTimeout
)

// IsRetryable determines if a remote API error should be retried.
// It returns false for permanent errors like invalid requests.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
