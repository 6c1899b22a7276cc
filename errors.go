package sheaf

import "errors"

// Sentinel errors returned by Stack operations. They carry no extra context
// on the hot path by design: callers branch on identity, not on message text.
var (
	// ErrInvalidArgument is returned for a nil stack, a zero slot count, or
	// a slot index out of range. Never retried internally.
	ErrInvalidArgument = errors.New("sheaf: invalid argument")

	// ErrOutOfMemory is returned when the page provider returns nil on a
	// required allocation. Init rolls back any partially constructed
	// state before returning it; Push never touches the stack head.
	ErrOutOfMemory = errors.New("sheaf: out of memory")

	// ErrEmpty is returned by Pop against a stack whose head is nil.
	ErrEmpty = errors.New("sheaf: empty")
)
