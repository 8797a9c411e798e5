package explorer

import "errors"

var (
	// ErrSortUnavailable is returned when a sort is not among the currently offered sorts
	ErrSortUnavailable = errors.New("sort unavailable")
	// ErrUnknownEnvironment is returned for an environment filter value that does not exist
	ErrUnknownEnvironment = errors.New("unknown environment")
	// ErrUnknownPrerogative is returned for a prerogative filter value that does not exist
	ErrUnknownPrerogative = errors.New("unknown prerogative")
	// ErrSessionClosed is returned by operations on a closed session
	ErrSessionClosed = errors.New("session closed")
)
