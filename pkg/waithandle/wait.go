package waithandle

import (
	"fmt"
	"slices"
	"time"
)

// Status is the outcome of a wait.
type Status int

const (
	Timeout Status = iota
	Signaled
	// Abandoned is never returned by this package. Callers layer it on top of
	// Signaled/Timeout to say that monitoring must stop.
	Abandoned
)

func (s Status) String() string {
	switch s {
	case Timeout:
		return "timeout"
	case Signaled:
		return "signaled"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result of WaitOne / WaitAny. Index is the position of the handle that
// satisfied the wait and is only meaningful when Status is Signaled.
type Result struct {
	Status Status
	Index  int
}

func (r Result) String() string {
	if r.Status == Signaled {
		return fmt.Sprintf("signaled(%d)", r.Index)
	}
	return r.Status.String()
}

// WaitOne blocks until h is signaled or timeout elapses. Use Infinite to wait
// forever and 0 to poll.
func WaitOne(h *Handle, timeout time.Duration) (Result, error) {
	return WaitAny([]*Handle{h}, timeout)
}

// WaitAny blocks until one of handles is signaled or timeout elapses. When
// several are signaled at once the lowest index wins, and only that handle is
// consumed.
func WaitAny(handles []*Handle, timeout time.Duration) (Result, error) {
	if len(handles) == 0 {
		return Result{}, ErrNoHandles
	}
	order := lockOrder(handles)

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	wake := make(chan struct{}, 1)
	registered := false
	defer func() {
		if registered {
			for _, h := range order {
				h.mu.Lock()
				delete(h.waiters, wake)
				h.mu.Unlock()
			}
		}
	}()

	for {
		for _, h := range order {
			h.mu.Lock()
		}
		res, done, err := pollLocked(handles)
		if !done && timeout != 0 && !registered {
			for _, h := range order {
				h.waiters[wake] = struct{}{}
			}
			registered = true
		}
		for _, h := range order {
			h.mu.Unlock()
		}
		if done {
			return res, err
		}
		if timeout == 0 {
			return Result{Status: Timeout}, nil
		}

		select {
		case <-wake:
		case <-deadline:
			return Result{Status: Timeout}, nil
		}
	}
}

// pollLocked checks handles in index order. All locks must be held.
func pollLocked(handles []*Handle) (Result, bool, error) {
	for _, h := range handles {
		if h.closed {
			return Result{}, true, fmt.Errorf("%w: %s", ErrClosed, h)
		}
	}
	for i, h := range handles {
		if h.tryAcquireLocked() {
			return Result{Status: Signaled, Index: i}, true, nil
		}
	}
	return Result{}, false, nil
}

// lockOrder returns the distinct handles sorted by creation id so that
// concurrent WaitAny calls over overlapping sets never deadlock.
func lockOrder(handles []*Handle) []*Handle {
	order := slices.Clone(handles)
	slices.SortFunc(order, func(a, b *Handle) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		default:
			return 0
		}
	})
	return slices.CompactFunc(order, func(a, b *Handle) bool { return a == b })
}
