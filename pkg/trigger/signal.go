//go:build linux

package trigger

import (
	"context"
	"log/slog"
	"os"

	"github.com/ja7ad/procdump/pkg/system/proc"
	"golang.org/x/sys/unix"
)

// signalThread waits for one signal. SIGINT and SIGTERM set quit, kill
// the process group of a running dump capture and cancel the dump context;
// a cancelled ctx ends the wait without doing anything.
func (m *Manager) signalThread(ctx context.Context) {
	var sig os.Signal
	select {
	case <-ctx.Done():
		return
	case s := <-m.sigCh:
		sig = s
	}

	switch sig {
	case unix.SIGINT, unix.SIGTERM:
		m.s.SetQuit(true)
		if pgid := m.s.GcorePID(); pgid != proc.NoPID {
			slog.Debug("killing dump capture", "pgid", pgid)
			if err := proc.KillGroup(m.s.Table(), pgid); err != nil {
				slog.Error("failed to kill dump capture", "pgid", pgid, "err", err)
			}
		}
		m.cancelDumps()
		if err := m.s.CleanupComplete.Set(); err != nil {
			slog.Debug("set cleanup complete", "err", err)
		}
		slog.Info("Quit", "signal", sig.String())
	default:
		slog.Warn("unexpected signal", "signal", sig.String())
	}
}
