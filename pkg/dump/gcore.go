//go:build linux

// Package dump captures core dumps of a running process with gcore.
package dump

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Reason names the trigger that asked for a dump. It ends up in the file
// name.
type Reason string

const (
	ReasonCPU    Reason = "cpu"
	ReasonCommit Reason = "commit"
	ReasonTimer  Reason = "time"
)

// waitDelay bounds how long Wait keeps reading output after cancellation.
const waitDelay = 2 * time.Second

// stampLayout is the timestamp embedded in dump file names.
const stampLayout = "2006-01-02_15:04:05"

// Request describes one dump.
type Request struct {
	PID    int
	Name   string
	Reason Reason
	At     time.Time
}

// Gcore runs the gcore program. Each invocation gets its own process group
// so that it can be killed together with the debugger it starts.
type Gcore struct {
	// Path of the gcore executable; looked up in $PATH when relative.
	Path string
	// Dir receives the dump files.
	Dir string
}

// Prefix returns the output prefix passed to gcore -o.
func (g Gcore) Prefix(req Request) string {
	at := req.At
	if at.IsZero() {
		at = time.Now()
	}
	name := req.Name
	if name == "" {
		name = strconv.Itoa(req.PID)
	}
	return filepath.Join(g.Dir, fmt.Sprintf("%s_%s_%s", name, req.Reason, at.Format(stampLayout)))
}

// Dump writes a core file of req.PID and returns its path. onStart, if not
// nil, receives the PID of the gcore process as soon as it runs; that PID is
// also its process group id.
func (g Gcore) Dump(ctx context.Context, req Request, onStart func(pid int)) (string, error) {
	if req.PID <= 0 {
		return "", fmt.Errorf("%w: %d", ErrNoTarget, req.PID)
	}

	prefix := g.Prefix(req)
	cmd := exec.CommandContext(ctx, g.Path, "-o", prefix, strconv.Itoa(req.PID))
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// gdb runs in the same group; cancelling must not leave it behind.
	cmd.Cancel = func() error { return unix.Kill(-cmd.Process.Pid, unix.SIGKILL) }
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: start %s: %w", ErrCapture, g.Path, err)
	}
	if onStart != nil {
		onStart(cmd.Process.Pid)
	}
	slog.Debug("gcore started", "pid", req.PID, "gcore_pid", cmd.Process.Pid, "prefix", prefix)

	if err := cmd.Wait(); err != nil {
		slog.Debug("gcore output", "output", out.String())
		return "", fmt.Errorf("%w: %s: %w", ErrCapture, g.Path, err)
	}

	file := fmt.Sprintf("%s.%d", prefix, req.PID)
	slog.Info("Core dump generated", "file", file)
	return file, nil
}
