//go:build linux

// Package trigger runs the monitoring threads of a session: one sampling
// thread per enabled trigger (CPU, commit, timer) and the signal thread that
// turns SIGINT and SIGTERM into a quit.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/ja7ad/procdump/pkg/dump"
	"github.com/ja7ad/procdump/pkg/session"
	"golang.org/x/sys/unix"
)

// DefaultJoinTimeout bounds the wait for the signal thread after it has been
// cancelled.
const DefaultJoinTimeout = 5 * time.Second

// CPUSampler reports CPU usage in percent of one core.
type CPUSampler interface {
	CPUPercent(pid int) (float64, error)
}

// MemorySampler reports memory commit in MiB.
type MemorySampler interface {
	CommitMB(pid int) (uint64, error)
}

// Dumper captures a core dump. onStart receives the PID (and process group)
// of the capture process while it runs.
type Dumper interface {
	Dump(ctx context.Context, req dump.Request, onStart func(pid int)) (string, error)
}

// Deps are the collaborators of the trigger threads.
type Deps struct {
	CPU    CPUSampler
	Memory MemorySampler
	Dumper Dumper

	// Exit ends the process after a join failure. Defaults to os.Exit.
	Exit func(code int)
	// JoinTimeout defaults to DefaultJoinTimeout.
	JoinTimeout time.Duration

	// Signals, when set, is a channel the caller already subscribed to
	// SIGINT and SIGTERM. The manager reads it but never subscribes or
	// unsubscribes it.
	Signals chan os.Signal

	// Notify and Stop default to signal.Notify and signal.Stop. They are
	// only used when Signals is nil.
	Notify func(c chan<- os.Signal, sig ...os.Signal)
	Stop   func(c chan<- os.Signal)
}

// Manager creates and joins the threads of one session.
type Manager struct {
	s    *session.Session
	deps Deps

	sigCh      chan os.Signal
	ownSignals bool

	// dumpCtx is cancelled once quit is requested; a capture in flight is
	// killed with it.
	dumpCtx     context.Context
	cancelDumps context.CancelFunc

	mu           sync.Mutex
	created      bool
	cancelSignal context.CancelFunc
}

func New(s *session.Session, deps Deps) *Manager {
	if deps.Exit == nil {
		deps.Exit = os.Exit
	}
	if deps.JoinTimeout <= 0 {
		deps.JoinTimeout = DefaultJoinTimeout
	}
	if deps.Notify == nil {
		deps.Notify = signal.Notify
	}
	if deps.Stop == nil {
		deps.Stop = signal.Stop
	}
	m := &Manager{
		s:          s,
		deps:       deps,
		sigCh:      deps.Signals,
		ownSignals: deps.Signals == nil,
	}
	if m.ownSignals {
		m.sigCh = make(chan os.Signal, 1)
	}
	m.dumpCtx, m.cancelDumps = context.WithCancel(context.Background())
	return m
}

// CreateTriggerThreads routes SIGINT and SIGTERM to the signal thread
// (unless Deps.Signals is already subscribed), then starts the CPU, commit
// and timer threads that the configuration enables, in that order, and the
// signal thread last. If a stage fails the error names it; threads already
// started keep running and must still be joined with
// WaitForAllThreadsToTerminate.
func (m *Manager) CreateTriggerThreads() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created {
		return ErrAlreadyCreated
	}
	m.created = true

	if !m.s.IsInitialized() {
		return fmt.Errorf("%w: session not initialized", ErrSpawn)
	}
	if m.ownSignals {
		m.deps.Notify(m.sigCh, unix.SIGINT, unix.SIGTERM)
	}

	cfg := m.s.Config()
	if cfg.CPUEnabled() {
		if err := m.check("cpu", m.deps.CPU == nil); err != nil {
			return err
		}
		m.s.AddThread(m.spawn("cpu", m.cpuThread))
	}
	if cfg.MemoryEnabled() {
		if err := m.check("commit", m.deps.Memory == nil); err != nil {
			return err
		}
		m.s.AddThread(m.spawn("commit", m.commitThread))
	}
	if cfg.TimerThreshold() {
		if err := m.check("timer", false); err != nil {
			return err
		}
		m.s.AddThread(m.spawn("timer", m.timerThread))
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSignal = cancel
	m.s.SetSignalThread(m.spawn("signal", func() { m.signalThread(ctx) }))

	if err := m.s.ThreadsInitialized.Set(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	slog.Debug("trigger threads created", "sampling", len(m.s.Threads()))
	return nil
}

// WaitForAllThreadsToTerminate joins the sampling threads in spawn order,
// then cancels and joins the signal thread. A thread that cannot be joined
// cleanly leaves the session in an unknown state: the error is logged and
// Exit(-1) is called. The error is also returned for an Exit that returns.
func (m *Manager) WaitForAllThreadsToTerminate() error {
	for _, th := range m.s.Threads() {
		if err := th.Join(0); err != nil {
			return m.fatal(th, err)
		}
	}

	if th := m.s.SignalThread(); th != nil {
		m.mu.Lock()
		cancel := m.cancelSignal
		m.mu.Unlock()
		cancel()
		if err := th.Join(m.deps.JoinTimeout); err != nil {
			return m.fatal(th, err)
		}
	}

	m.cancelDumps()
	if m.ownSignals {
		m.deps.Stop(m.sigCh)
	}
	return nil
}

// quit sets quit and cancels a dump capture in flight.
func (m *Manager) quit() {
	m.s.SetQuit(true)
	m.cancelDumps()
}

// check reports a stage that cannot start for lack of a collaborator.
func (m *Manager) check(stage string, noSampler bool) error {
	switch {
	case noSampler:
		return fmt.Errorf("%w: %s: no sampler", ErrSpawn, stage)
	case m.deps.Dumper == nil:
		return fmt.Errorf("%w: %s: no dumper", ErrSpawn, stage)
	}
	return nil
}

func (m *Manager) fatal(th *session.Thread, err error) error {
	slog.Error("failed to join thread", "thread", th.Name(), "err", err)
	m.deps.Exit(-1)
	return err
}

// spawn runs fn on its own goroutine. A panic is recovered, becomes the
// thread's exit error and sets quit so that the other threads wind down.
func (m *Manager) spawn(name string, fn func()) *session.Thread {
	th := session.NewThread(name)
	go func() {
		var err error
		defer func() { th.Finish(err) }()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s: %v", ErrThreadPanic, name, r)
				slog.Error("thread panicked", "thread", name, "panic", r)
				m.quit()
			}
		}()
		slog.Debug("thread started", "thread", name)
		fn()
		slog.Debug("thread exiting", "thread", name)
	}()
	return th
}
