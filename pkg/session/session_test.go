package session

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ja7ad/procdump/pkg/config"
	"github.com/ja7ad/procdump/pkg/system/proc"
	"github.com/ja7ad/procdump/pkg/waithandle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeTable reports a single target process whose liveness tests control.
type fakeTable struct {
	alive  atomic.Bool
	probes atomic.Int64
}

func (f *fakeTable) PIDs() ([]int, error)          { return nil, nil }
func (f *fakeTable) CmdLine(int) ([]string, error) { return nil, proc.ErrNoCmdline }
func (f *fakeTable) Signal(int, unix.Signal) error { return nil }

func (f *fakeTable) IsAlive(int) bool {
	f.probes.Add(1)
	return f.alive.Load()
}

func newSession(t *testing.T, mod func(*config.Config)) (*Session, *fakeTable) {
	t.Helper()
	cfg := config.Default()
	cfg.ProcessID = 4242
	if mod != nil {
		mod(&cfg)
	}
	table := &fakeTable{}
	table.alive.Store(true)
	s, err := New(cfg, table)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, table
}

func TestNew_InitializesOnce(t *testing.T) {
	s, _ := newSession(t, nil)
	assert.True(t, s.IsInitialized())
	assert.Equal(t, 4242, s.PID())
	assert.Equal(t, proc.NoPID, s.GcorePID())
	assert.False(t, s.WaitingForProcessName())

	quit := s.Quit
	require.NoError(t, s.Init())
	assert.Same(t, quit, s.Quit, "second Init must not recreate handles")
}

func TestNew_WaitingForName(t *testing.T) {
	s, _ := newSession(t, func(c *config.Config) {
		c.ProcessID = config.Disabled
		c.ProcessName = "foo"
		c.WaitForName = true
	})
	assert.True(t, s.WaitingForProcessName())
	assert.Equal(t, proc.NoPID, s.PID())
	assert.Equal(t, "foo", s.ProcessName())

	s.SetTarget(777, "foo")
	assert.False(t, s.WaitingForProcessName())
	assert.Equal(t, 777, s.PID())
}

func TestContinueMonitoring_QuotaIsFinal(t *testing.T) {
	s, table := newSession(t, func(c *config.Config) { c.DumpsToCollect = 2 })
	assert.True(t, s.ContinueMonitoring())

	s.IncrementDumps()
	assert.True(t, s.ContinueMonitoring())
	s.IncrementDumps()

	for i := 0; i < 3; i++ {
		assert.False(t, s.ContinueMonitoring(), "quota reached, target still alive")
	}
	assert.True(t, table.alive.Load())
	assert.False(t, s.Terminated())
}

func TestContinueMonitoring_TerminationIsSticky(t *testing.T) {
	s, table := newSession(t, nil)
	assert.True(t, s.ContinueMonitoring())

	table.alive.Store(false)
	assert.False(t, s.ContinueMonitoring())
	assert.True(t, s.Terminated())

	probes := table.probes.Load()
	table.alive.Store(true)
	assert.False(t, s.ContinueMonitoring(), "a stale probe must not resurrect the target")
	assert.Equal(t, probes, table.probes.Load(), "no probe after termination")
}

func TestMarkTerminated(t *testing.T) {
	s, table := newSession(t, nil)
	s.MarkTerminated()

	assert.True(t, s.Terminated())
	assert.False(t, s.ContinueMonitoring())
	assert.Zero(t, table.probes.Load(), "no liveness probe once terminated")
	assert.Equal(t, waithandle.Abandoned, s.WaitForQuit(time.Second).Status)
}

func TestWaitForQuit(t *testing.T) {
	s, table := newSession(t, nil)

	res := s.WaitForQuit(5 * time.Millisecond)
	assert.Equal(t, waithandle.Timeout, res.Status)

	// Target dies during the wait: the timeout is upgraded.
	go func() {
		time.Sleep(5 * time.Millisecond)
		table.alive.Store(false)
	}()
	res = s.WaitForQuit(30 * time.Millisecond)
	assert.Equal(t, waithandle.Abandoned, res.Status)

	// Already stopped: no wait at all.
	start := time.Now()
	res = s.WaitForQuit(time.Second)
	assert.Equal(t, waithandle.Abandoned, res.Status)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitForQuit_QuitEvent(t *testing.T) {
	s, _ := newSession(t, nil)
	s.SetQuit(true)

	res := s.WaitForQuit(time.Second)
	assert.Equal(t, waithandle.Result{Status: waithandle.Signaled, Index: 0}, res)
}

func TestWaitForQuitOrEvent_QuitTakesPrecedence(t *testing.T) {
	s, _ := newSession(t, nil)
	other := waithandle.NewEvent("dump done")
	require.NoError(t, other.Set())
	s.SetQuit(true)

	res := s.WaitForQuitOrEvent(other, 0)
	assert.Equal(t, waithandle.Abandoned, res.Status)
}

func TestWaitForQuitOrEvent_OtherHandle(t *testing.T) {
	s, _ := newSession(t, nil)

	res := s.WaitForQuitOrEvent(s.DumpSlots, waithandle.Infinite)
	assert.Equal(t, waithandle.Result{Status: waithandle.Signaled, Index: 1}, res)

	// slot taken: times out
	res = s.WaitForQuitOrEvent(s.DumpSlots, 5*time.Millisecond)
	assert.Equal(t, waithandle.Timeout, res.Status)

	// quit while blocked on the slot
	go func() {
		time.Sleep(5 * time.Millisecond)
		s.SetQuit(true)
	}()
	res = s.WaitForQuitOrEvent(s.DumpSlots, waithandle.Infinite)
	assert.Equal(t, waithandle.Abandoned, res.Status)

	require.NoError(t, s.DumpSlots.Release())
}

func TestWaitForQuitOrEvent_TimeoutUpgrade(t *testing.T) {
	s, _ := newSession(t, nil)
	other := waithandle.NewEvent("other")

	res := s.WaitForQuitOrEvent(other, 5*time.Millisecond)
	assert.Equal(t, waithandle.Timeout, res.Status)

	s.IncrementDumps()
	res = s.WaitForQuitOrEvent(other, 5*time.Millisecond)
	assert.Equal(t, waithandle.Abandoned, res.Status)
}

func TestSetQuit_Idempotent(t *testing.T) {
	s, _ := newSession(t, nil)
	s.SetQuit(true)
	s.SetQuit(true)
	assert.True(t, s.IsQuit())

	res, err := waithandle.WaitOne(s.Quit, 0)
	require.NoError(t, err)
	assert.Equal(t, waithandle.Signaled, res.Status)
}

func TestBeginMonitoring(t *testing.T) {
	s, _ := newSession(t, nil)
	released := make(chan struct{})
	go func() {
		_, _ = waithandle.WaitOne(s.StartMonitoring, waithandle.Infinite)
		close(released)
	}()
	require.NoError(t, s.BeginMonitoring())
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("BeginMonitoring did not release the waiter")
	}
}

func TestPrintConfiguration_OnceUnderConcurrency(t *testing.T) {
	s, _ := newSession(t, func(c *config.Config) {
		c.CPUThreshold = 50
		c.MemoryThreshold = 300
		c.MemoryBelow = true
		c.DumpsToCollect = 3
	})
	s.SetProcessName("foo")

	var (
		buf  safeBuffer
		wg   sync.WaitGroup
		wins atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.PrintConfiguration(&buf) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "Process:"))
	assert.Contains(t, out, "Process:\t\tfoo (4242)\n")
	assert.Contains(t, out, "CPU Threshold:\t\t>=50\n")
	assert.Contains(t, out, "Commit Threshold:\t<300\n")
	assert.Contains(t, out, "Threshold Seconds:\t10\n")
	assert.Contains(t, out, "Number of Dumps:\t3\n")

	res, err := waithandle.WaitOne(s.ConfigurationPrinted, 0)
	require.NoError(t, err)
	assert.Equal(t, waithandle.Signaled, res.Status)
}

func TestPrintConfiguration_Pending(t *testing.T) {
	s, _ := newSession(t, func(c *config.Config) {
		c.ProcessID = config.Disabled
		c.ProcessName = "foo"
		c.WaitForName = true
	})
	var buf bytes.Buffer
	require.True(t, s.PrintConfiguration(&buf))
	assert.Contains(t, buf.String(), "foo (pending)")
	assert.Contains(t, buf.String(), "CPU Threshold:\t\tn/a")
}

func TestPrintBanner_Once(t *testing.T) {
	s, _ := newSession(t, nil)
	var buf bytes.Buffer
	assert.True(t, s.PrintBanner(&buf))
	assert.False(t, s.PrintBanner(&buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "procdump"))
}

func TestClose_Twice(t *testing.T) {
	cfg := config.Default()
	cfg.ProcessID = 1
	s, err := New(cfg, &fakeTable{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), waithandle.ErrClosed)
}

func TestThreadJoin(t *testing.T) {
	th := NewThread("cpu")
	go func() {
		time.Sleep(5 * time.Millisecond)
		th.Finish(nil)
	}()
	assert.NoError(t, th.Join(0))

	stuck := NewThread("stuck")
	assert.ErrorIs(t, stuck.Join(5*time.Millisecond), ErrJoinTimeout)
}

type safeBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
