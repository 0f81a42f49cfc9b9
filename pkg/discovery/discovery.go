//go:build linux

// Package discovery finds the process to monitor, by PID or by name.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ja7ad/procdump/pkg/system/proc"
)

// DefaultScanInterval is the pause between two name scans.
const DefaultScanInterval = 100 * time.Millisecond

// ResolveByPID succeeds iff pid is currently alive in t.
func ResolveByPID(t proc.Table, pid int) (int, error) {
	if pid <= 0 || !t.IsAlive(pid) {
		return proc.NoPID, fmt.Errorf("%w: %d", ErrNoSuchProcess, pid)
	}
	return pid, nil
}

// ResolveByName runs one scan of the process table. It returns the PID of
// the only process named name, ErrNoMatch when there is none and
// ErrAmbiguousTarget when there are several.
func ResolveByName(t proc.Table, name string) (int, error) {
	if name == "" {
		return proc.NoPID, ErrEmptyName
	}
	pids, err := t.PIDs()
	if err != nil {
		return proc.NoPID, err
	}

	match := proc.NoPID
	for _, pid := range pids {
		got, ok := proc.NameOf(t, pid)
		if !ok || got != name {
			continue
		}
		if match != proc.NoPID {
			return proc.NoPID, fmt.Errorf("%w: %q (pids %d, %d)", ErrAmbiguousTarget, name, match, pid)
		}
		match = pid
	}
	if match == proc.NoPID {
		return proc.NoPID, ErrNoMatch
	}
	return match, nil
}

// WaitForName rescans every interval until exactly one process is named
// name. It gives up on ambiguity, on a failing process table, or when ctx
// is done.
func WaitForName(ctx context.Context, t proc.Table, name string, interval time.Duration) (int, error) {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for scans := 1; ; scans++ {
		select {
		case <-ctx.Done():
			return proc.NoPID, ctx.Err()
		case <-timer.C:
		}

		pid, err := ResolveByName(t, name)
		switch {
		case err == nil:
			slog.Debug("process found", "name", name, "pid", pid, "scans", scans)
			return pid, nil
		case !errors.Is(err, ErrNoMatch):
			return proc.NoPID, err
		}
		timer.Reset(interval)
	}
}

// ProcessName returns the name pid runs under, or false if the process went
// away or its command line cannot be parsed.
func ProcessName(t proc.Table, pid int) (string, bool) {
	return proc.NameOf(t, pid)
}

// IsAlive probes pid without signalling it.
func IsAlive(t proc.Table, pid int) bool {
	return t.IsAlive(pid)
}
