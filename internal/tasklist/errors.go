package tasklist

import "errors"

var (
	// ErrIndexUnavailable reports that the index source could not be queried.
	ErrIndexUnavailable = errors.New("task index unavailable")

	// ErrInvalidMode reports an unknown list mode.
	ErrInvalidMode = errors.New("invalid list mode")
)
