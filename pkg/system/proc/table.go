//go:build linux

package proc

import (
	"path"

	"golang.org/x/sys/unix"
)

// NoPID marks "no process" wherever a PID is expected.
const NoPID = -1

// Table is the view of the OS process table the monitor depends on.
type Table interface {
	// PIDs lists the live process identifiers in ascending order.
	PIDs() ([]int, error)
	// CmdLine returns the argument list of pid.
	CmdLine(pid int) ([]string, error)
	// IsAlive probes pid without delivering a signal.
	IsAlive(pid int) bool
	// Signal sends sig to pid. A negative pid addresses the process group
	// -pid.
	Signal(pid int, sig unix.Signal) error
}

// Launcher is the privilege-elevation wrapper skipped when naming a process.
const Launcher = "sudo"

// ProcessName derives a process name from its argument list: leading
// launcher tokens are skipped and the last path element of the first
// remaining token is returned.
func ProcessName(args []string) (string, bool) {
	for _, arg := range args {
		if arg == Launcher {
			continue
		}
		name := path.Base(arg)
		if arg == "" || name == "/" || name == "." {
			return "", false
		}
		return name, true
	}
	return "", false
}

// NameOf resolves the name of pid through t. It reports false when the
// process vanished or its command line is empty (kernel threads).
func NameOf(t Table, pid int) (string, bool) {
	args, err := t.CmdLine(pid)
	if err != nil {
		return "", false
	}
	return ProcessName(args)
}

// KillGroup forcefully terminates the process group led by pgid.
func KillGroup(t Table, pgid int) error {
	if pgid <= 0 {
		return ErrBadPID
	}
	return t.Signal(-pgid, unix.SIGKILL)
}
