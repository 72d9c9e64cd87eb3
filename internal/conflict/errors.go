package conflict

import "errors"

var (
	// ErrInvalidInput marks a caller bug such as diffing two versions
	// of different items. The triggering event is dropped, not retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation marks a malformed manual resolution. Surfaced to the
	// caller so the merge can be corrected and resubmitted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by registry removal for an unknown
	// conflict id. Callers treat it as a benign race with another
	// session, not a user-facing error.
	ErrNotFound = errors.New("conflict not found")

	// ErrResolutionInFlight rejects a second resolution for the same
	// item while a submission is awaiting transport confirmation.
	ErrResolutionInFlight = errors.New("resolution already in flight")
)
