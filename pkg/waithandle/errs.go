package waithandle

import "errors"

var (
	// ErrWrongKind is returned when an operation is applied to a handle of the
	// other kind (Reset on a semaphore, Release on an event, ...).
	ErrWrongKind = errors.New("waithandle: operation not valid for handle kind")

	// ErrClosed is returned by any operation on a handle that was closed,
	// including a second Close.
	ErrClosed = errors.New("waithandle: handle closed")

	// ErrMaxCount indicates that a Release would push a semaphore past its
	// configured maximum.
	ErrMaxCount = errors.New("waithandle: semaphore at maximum count")

	// ErrBadCount indicates an invalid initial or maximum semaphore count.
	ErrBadCount = errors.New("waithandle: bad semaphore count")

	// ErrNoHandles is returned by WaitAny when called with an empty list.
	ErrNoHandles = errors.New("waithandle: no handles")
)
