package fetcher

import "errors"

// Fetch errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows the
// crawler to use errors.Is() when deciding how to record a failure
// while still providing human-readable messages.
var (
	// ErrBadStatus is returned when a response carries a non-2xx
	// status code. The response itself may still accompany the error
	// so the caller can record the code.
	ErrBadStatus = errors.New("unexpected status code")
)
