// Package session holds the state shared by every monitoring thread: the
// target, the configuration snapshot, dump counters, the named wait handles
// and the thread table. It also implements the monitoring state machine
// (ContinueMonitoring, WaitForQuit, WaitForQuitOrEvent) that threads use to
// pace themselves and to learn when to stop.
//
// A Session is created once per process by New and torn down once by Close,
// after every thread recorded in it has been joined.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ja7ad/procdump/pkg/config"
	"github.com/ja7ad/procdump/pkg/system/proc"
	"github.com/ja7ad/procdump/pkg/waithandle"
)

// Session is the shared monitoring state.
type Session struct {
	cfg   config.Config
	table proc.Table

	initOnce sync.Once
	initErr  error

	// Initialized is set once Init has made every other field valid.
	Initialized *waithandle.Handle

	Quit                 *waithandle.Handle
	StartMonitoring      *waithandle.Handle
	ConfigurationPrinted *waithandle.Handle
	BannerPrinted        *waithandle.Handle
	// CleanupComplete is set by the signal thread once in-flight dump capture
	// has been killed.
	CleanupComplete *waithandle.Handle
	// ThreadsInitialized is set once every trigger thread has been spawned.
	ThreadsInitialized *waithandle.Handle
	// DumpSlots bounds dump capture to one at a time.
	DumpSlots *waithandle.Handle

	pid            atomic.Int64
	nameMu         sync.RWMutex
	name           string
	waitingForName atomic.Bool

	dumpsCollected atomic.Int64
	terminated     atomic.Bool
	quit           atomic.Bool
	gcorePID       atomic.Int64

	threadsMu    sync.Mutex
	threads      []*Thread
	signalThread *Thread

	bannerOnce sync.Once
	configOnce sync.Once
}

// New creates and initialises a session for cfg, probing liveness through
// table.
func New(cfg config.Config, table proc.Table) (*Session, error) {
	s := &Session{
		cfg:         cfg,
		table:       table,
		Initialized: waithandle.NewEvent("ConfigurationInitialized"),
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init sets up handles and defaults. Only the first call does anything;
// later calls return its result.
func (s *Session) Init() error {
	s.initOnce.Do(func() {
		s.initErr = s.init()
	})
	return s.initErr
}

func (s *Session) init() error {
	slots, err := waithandle.NewSemaphore("AvailableDumpSlots", 1, 1)
	if err != nil {
		return fmt.Errorf("session: dump slots: %w", err)
	}
	s.DumpSlots = slots
	s.Quit = waithandle.NewEvent("Quit")
	s.StartMonitoring = waithandle.NewEvent("StartMonitoring")
	s.ConfigurationPrinted = waithandle.NewEvent("ConfigurationPrinted")
	s.BannerPrinted = waithandle.NewEvent("BannerPrinted")
	s.CleanupComplete = waithandle.NewEvent("CtrlHandlerCleanupComplete")
	s.ThreadsInitialized = waithandle.NewEvent("ThreadsInitialized")

	s.pid.Store(int64(proc.NoPID))
	s.gcorePID.Store(int64(proc.NoPID))
	if s.cfg.WaitForName {
		s.name = s.cfg.ProcessName
		s.waitingForName.Store(true)
	} else if s.cfg.ProcessID > 0 {
		s.pid.Store(int64(s.cfg.ProcessID))
	}

	return s.Initialized.Set()
}

// IsInitialized reports whether Init has completed.
func (s *Session) IsInitialized() bool {
	res, err := waithandle.WaitOne(s.Initialized, 0)
	return err == nil && res.Status == waithandle.Signaled
}

// Config returns the configuration snapshot.
func (s *Session) Config() config.Config { return s.cfg }

// Table returns the process table the session probes.
func (s *Session) Table() proc.Table { return s.table }

// PID returns the target PID, or proc.NoPID while waiting for a name.
func (s *Session) PID() int { return int(s.pid.Load()) }

// ProcessName returns the target's name; empty when unknown.
func (s *Session) ProcessName() string {
	s.nameMu.RLock()
	defer s.nameMu.RUnlock()
	return s.name
}

func (s *Session) SetProcessName(name string) {
	s.nameMu.Lock()
	s.name = name
	s.nameMu.Unlock()
}

// WaitingForProcessName reports whether the target is still to be found by
// name.
func (s *Session) WaitingForProcessName() bool { return s.waitingForName.Load() }

// SetTarget records a resolved target. From then on the session has a PID
// and is no longer waiting for a name.
func (s *Session) SetTarget(pid int, name string) {
	s.SetProcessName(name)
	s.pid.Store(int64(pid))
	s.waitingForName.Store(false)
}

func (s *Session) DumpsCollected() int { return int(s.dumpsCollected.Load()) }

// IncrementDumps records a completed dump and returns the new count.
func (s *Session) IncrementDumps() int { return int(s.dumpsCollected.Add(1)) }

// Terminated reports whether the target was seen gone.
func (s *Session) Terminated() bool { return s.terminated.Load() }

// MarkTerminated records that the target must be treated as gone, as after
// an ambiguous name lookup. ContinueMonitoring is false from then on.
func (s *Session) MarkTerminated() { s.terminated.Store(true) }

// GcorePID returns the PID of the running dump-capture process, or
// proc.NoPID.
func (s *Session) GcorePID() int { return int(s.gcorePID.Load()) }

func (s *Session) SetGcorePID(pid int) { s.gcorePID.Store(int64(pid)) }

// Close releases every handle. All threads must have been joined.
func (s *Session) Close() error {
	var errs []error
	for _, h := range []*waithandle.Handle{
		s.CleanupComplete,
		s.BannerPrinted,
		s.ConfigurationPrinted,
		s.ThreadsInitialized,
		s.Quit,
		s.StartMonitoring,
		s.DumpSlots,
		s.Initialized,
	} {
		if h == nil {
			continue
		}
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session: close %s: %w", h.Name(), err))
		}
	}
	return errors.Join(errs...)
}
