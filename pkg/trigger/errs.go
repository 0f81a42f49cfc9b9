package trigger

import "errors"

var (
	// ErrSpawn is returned by CreateTriggerThreads when a stage cannot start.
	ErrSpawn = errors.New("trigger: failed to create thread")

	// ErrAlreadyCreated is returned when the threads were already created.
	ErrAlreadyCreated = errors.New("trigger: threads already created")

	// ErrThreadPanic is the exit error of a thread that panicked.
	ErrThreadPanic = errors.New("trigger: thread panicked")
)
