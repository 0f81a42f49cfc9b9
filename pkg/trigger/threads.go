//go:build linux

package trigger

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ja7ad/procdump/pkg/dump"
	"github.com/ja7ad/procdump/pkg/system/proc"
	"github.com/ja7ad/procdump/pkg/types"
	"github.com/ja7ad/procdump/pkg/waithandle"
)

// sampleFunc takes one sample of pid and reports whether it crosses the
// trigger threshold.
type sampleFunc func(pid int) (bool, error)

func (m *Manager) cpuThread() {
	cfg := m.s.Config()
	m.monitor(dump.ReasonCPU, func(pid int) (bool, error) {
		cpu, err := m.deps.CPU.CPUPercent(pid)
		if err != nil {
			return false, err
		}
		slog.Debug("cpu sample", "pid", pid, "cpu", cpu)
		return crossed(cpu, cfg.CPUThreshold, cfg.CPUBelow), nil
	})
}

func (m *Manager) commitThread() {
	cfg := m.s.Config()
	m.monitor(dump.ReasonCommit, func(pid int) (bool, error) {
		mb, err := m.deps.Memory.CommitMB(pid)
		if err != nil {
			return false, err
		}
		slog.Debug("commit sample", "pid", pid, "commit", types.FromMB(mb).Humanized())
		return crossed(float64(mb), cfg.MemoryThreshold, cfg.MemoryBelow), nil
	})
}

// timerThread dumps every ThresholdSeconds regardless of load.
func (m *Manager) timerThread() {
	m.monitor(dump.ReasonTimer, func(int) (bool, error) { return true, nil })
}

func crossed(v float64, threshold int, below bool) bool {
	if below {
		return v < float64(threshold)
	}
	return v >= float64(threshold)
}

// monitor is the body shared by the sampling threads. It waits for
// monitoring to begin, then samples every SampleInterval; after a dump it
// pauses for ThresholdSeconds instead.
func (m *Manager) monitor(reason dump.Reason, sample sampleFunc) {
	if m.s.WaitForQuitOrEvent(m.s.StartMonitoring, waithandle.Infinite).Status != waithandle.Signaled {
		return
	}

	cfg := m.s.Config()
	for m.s.WaitForQuit(0).Status == waithandle.Timeout {
		pid := m.s.PID()
		pause := cfg.SampleInterval

		hit, err := sample(pid)
		switch {
		case errors.Is(err, proc.ErrWarmup):
		case err != nil:
			slog.Warn("sample error", "trigger", reason, "pid", pid, "err", err)
		case hit:
			slog.Info("Trigger fired", "trigger", reason, "pid", pid)
			if !m.writeDump(reason) {
				return
			}
			pause = cfg.Threshold()
		}

		if m.s.WaitForQuit(pause).Status != waithandle.Timeout {
			return
		}
	}
}

// writeDump captures one dump while holding the dump slot. It reports
// whether the calling thread should keep monitoring.
func (m *Manager) writeDump(reason dump.Reason) bool {
	if m.s.WaitForQuitOrEvent(m.s.DumpSlots, waithandle.Infinite).Status != waithandle.Signaled {
		return false
	}
	defer func() {
		if err := m.s.DumpSlots.Release(); err != nil {
			slog.Error("failed to release dump slot", "err", err)
		}
	}()

	// The quota may have been filled while this thread waited for the slot.
	if m.s.IsQuit() || !m.s.ContinueMonitoring() {
		return false
	}

	req := dump.Request{
		PID:    m.s.PID(),
		Name:   m.s.ProcessName(),
		Reason: reason,
		At:     time.Now(),
	}
	file, err := m.deps.Dumper.Dump(m.dumpCtx, req, m.s.SetGcorePID)
	m.s.SetGcorePID(proc.NoPID)
	if err != nil {
		if m.s.IsQuit() {
			slog.Info("dump capture cancelled", "pid", req.PID, "reason", reason)
			return false
		}
		slog.Error("failed to write core dump", "pid", req.PID, "reason", reason, "err", err)
		m.quit()
		return false
	}

	n := m.s.IncrementDumps()
	slog.Info("dump collected", "file", file, "count", n, "quota", m.s.Config().DumpsToCollect)
	return true
}
