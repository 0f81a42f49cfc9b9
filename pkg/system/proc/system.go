//go:build linux

package proc

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// System is the live process table of the host.
type System struct{}

var _ Table = System{}

func (System) PIDs() ([]int, error) {
	raw, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("proc: list pids: %w", err)
	}
	pids := make([]int, 0, len(raw))
	for _, p := range raw {
		pids = append(pids, int(p))
	}
	slices.Sort(pids)
	return pids, nil
}

func (System) CmdLine(pid int) ([]string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, fmt.Errorf("%w: %d", ErrNoProcess, pid)
		}
		return nil, err
	}
	args, err := p.CmdlineSlice()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, ErrNoCmdline
	}
	return args, nil
}

// IsAlive uses kill(pid, 0): the kernel checks the target without sending
// anything. Any error, EPERM included, counts as not alive.
func (System) IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

func (System) Signal(pid int, sig unix.Signal) error {
	if pid == 0 {
		return ErrBadPID
	}
	return unix.Kill(pid, sig)
}
