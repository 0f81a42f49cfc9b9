package dump

import "errors"

var (
	// ErrNoTarget is returned for a request without a usable PID.
	ErrNoTarget = errors.New("dump: invalid target pid")

	// ErrCapture wraps a failing or missing dump-capture program.
	ErrCapture = errors.New("dump: capture failed")
)
