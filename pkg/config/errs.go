package config

import "errors"

var (
	ErrCPUThreshold     = errors.New("config: invalid CPU threshold specified")
	ErrMemoryThreshold  = errors.New("config: invalid memory threshold specified")
	ErrDumpCount        = errors.New("config: invalid dumps threshold specified")
	ErrThresholdSeconds = errors.New("config: invalid time threshold specified")
	ErrSampleInterval   = errors.New("config: invalid sample interval")
	ErrBadPID           = errors.New("config: invalid PID")

	// ErrDuplicateThreshold is returned when both the above and below form of
	// the same threshold are given.
	ErrDuplicateThreshold = errors.New("config: threshold specified more than once")

	ErrNoTarget       = errors.New("config: a valid PID or process name must be specified")
	ErrTargetConflict = errors.New("config: please only specify one of PID or process name")
)
