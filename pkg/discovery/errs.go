package discovery

import "errors"

var (
	// ErrNoSuchProcess is returned when a PID has no process table entry.
	ErrNoSuchProcess = errors.New("discovery: no such process")

	// ErrAmbiguousTarget is returned when more than one process carries the
	// requested name. It is final: the scan is not retried.
	ErrAmbiguousTarget = errors.New("discovery: more than one process matches")

	// ErrNoMatch is returned by a single scan that found nothing.
	ErrNoMatch = errors.New("discovery: no matching process")

	// ErrEmptyName is returned when asked to look for an empty name.
	ErrEmptyName = errors.New("discovery: empty process name")
)
