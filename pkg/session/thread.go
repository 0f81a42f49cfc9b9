package session

import (
	"fmt"
	"time"
)

// Thread is the join handle of a goroutine recorded in the thread table.
type Thread struct {
	name string
	done chan struct{}
	err  error
}

func NewThread(name string) *Thread {
	return &Thread{name: name, done: make(chan struct{})}
}

func (t *Thread) Name() string { return t.name }

// Finish marks the thread as exited with err (nil for a clean exit). It must
// be called exactly once, by the thread itself.
func (t *Thread) Finish(err error) {
	t.err = err
	close(t.done)
}

// Join waits for the thread to finish. A timeout <= 0 waits forever. It
// returns the thread's exit error, or ErrJoinTimeout.
func (t *Thread) Join(timeout time.Duration) error {
	if timeout <= 0 {
		<-t.done
		return t.err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.err
	case <-timer.C:
		return fmt.Errorf("%w: %s after %s", ErrJoinTimeout, t.name, timeout)
	}
}

// AddThread appends a sampling thread to the table, in spawn order.
func (s *Session) AddThread(t *Thread) {
	s.threadsMu.Lock()
	s.threads = append(s.threads, t)
	s.threadsMu.Unlock()
}

// Threads returns the sampling threads in spawn order.
func (s *Session) Threads() []*Thread {
	s.threadsMu.Lock()
	defer s.threadsMu.Unlock()
	out := make([]*Thread, len(s.threads))
	copy(out, s.threads)
	return out
}

func (s *Session) SetSignalThread(t *Thread) {
	s.threadsMu.Lock()
	s.signalThread = t
	s.threadsMu.Unlock()
}

func (s *Session) SignalThread() *Thread {
	s.threadsMu.Lock()
	defer s.threadsMu.Unlock()
	return s.signalThread
}
