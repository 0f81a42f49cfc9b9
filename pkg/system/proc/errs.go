package proc

import "errors"

var (
	// ErrNoStat indicates that /proc/<pid>/stat was empty or malformed.
	ErrNoStat = errors.New("proc: malformed or empty stat")

	// ErrShortStat indicates that /proc/<pid>/stat had fewer fields than expected.
	ErrShortStat = errors.New("proc: short stat")

	// ErrNoProcess indicates that the process is not in the process table.
	ErrNoProcess = errors.New("proc: no such process")

	// ErrNoCmdline indicates an empty argument list (kernel threads, zombies).
	ErrNoCmdline = errors.New("proc: empty cmdline")

	// ErrBadPID is returned for PIDs that would address more than one process
	// by accident (0, or a non-positive process group).
	ErrBadPID = errors.New("proc: invalid pid")

	// ErrWarmup is returned by the CPU sampler on the first sample of a PID,
	// when there is no previous reading to diff against.
	ErrWarmup = errors.New("proc: no baseline sample yet")
)
