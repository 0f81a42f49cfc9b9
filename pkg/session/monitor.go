package session

import (
	"log/slog"
	"time"

	"github.com/ja7ad/procdump/pkg/waithandle"
)

var abandoned = waithandle.Result{Status: waithandle.Abandoned}

// ContinueMonitoring reports whether threads should keep going. It is false
// once the dump quota is met, or once the target is known to be gone; a
// failed liveness probe sets Terminated so the answer never flips back.
func (s *Session) ContinueMonitoring() bool {
	if s.DumpsCollected() >= s.cfg.DumpsToCollect {
		return false
	}
	if s.terminated.Load() {
		return false
	}

	pid := s.PID()
	if !s.table.IsAlive(pid) {
		if s.terminated.CompareAndSwap(false, true) {
			slog.Error("Target process is no longer alive", "pid", pid)
		}
		return false
	}
	return true
}

// WaitForQuit is a sampling thread's sleep: it waits up to timeout for the
// quit event. It returns Abandoned instead of Timeout when monitoring should
// stop, and Abandoned right away if it already should.
func (s *Session) WaitForQuit(timeout time.Duration) waithandle.Result {
	if !s.ContinueMonitoring() {
		return abandoned
	}

	res, err := waithandle.WaitOne(s.Quit, timeout)
	if err != nil {
		slog.Debug("quit wait failed", "err", err)
		return abandoned
	}
	if res.Status == waithandle.Timeout && !s.ContinueMonitoring() {
		return abandoned
	}
	return res
}

// WaitForQuitOrEvent waits for the quit event or h. Quit always yields
// Abandoned, whatever the remaining quota; h yields Signaled with Index 1.
func (s *Session) WaitForQuitOrEvent(h *waithandle.Handle, timeout time.Duration) waithandle.Result {
	if !s.ContinueMonitoring() {
		return abandoned
	}

	res, err := waithandle.WaitAny([]*waithandle.Handle{s.Quit, h}, timeout)
	if err != nil {
		slog.Debug("quit-or-event wait failed", "handle", h.Name(), "err", err)
		return abandoned
	}
	switch {
	case res.Status == waithandle.Signaled && res.Index == 0:
		return abandoned
	case res.Status == waithandle.Timeout && !s.ContinueMonitoring():
		return abandoned
	}
	return res
}

// SetQuit records the quit flag and signals the quit event. Calling it again
// is harmless.
func (s *Session) SetQuit(quit bool) {
	s.quit.Store(quit)
	if err := s.Quit.Set(); err != nil {
		slog.Debug("set quit", "err", err)
	}
}

func (s *Session) IsQuit() bool { return s.quit.Load() }

// BeginMonitoring releases threads gated on StartMonitoring.
func (s *Session) BeginMonitoring() error {
	return s.StartMonitoring.Set()
}
