// Package waithandle provides the two waitable objects the monitor is built
// on: a manual-reset event and a counting semaphore. Both are waited on
// through the same WaitOne / WaitAny calls, each with a timeout.
//
// An event stays signaled from Set until Reset, and a successful wait does
// not consume it. A semaphore is signaled while its count is above zero, and
// a successful wait takes one unit.
//
// WaitAny is atomic across the handles it is given: it locks all of them,
// reports the lowest index that is signaled and only consumes that one.
package waithandle

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Infinite makes a wait block until a handle is signaled.
const Infinite time.Duration = -1

// Kind tells an Event from a Semaphore. It never changes after construction.
type Kind int

const (
	Event Kind = iota
	Semaphore
)

func (k Kind) String() string {
	switch k {
	case Event:
		return "event"
	case Semaphore:
		return "semaphore"
	default:
		return "unknown"
	}
}

var nextID atomic.Uint64

// Handle is an event or a semaphore. The zero value is not usable; create
// handles with NewEvent or NewSemaphore.
type Handle struct {
	id   uint64 // lock order for WaitAny
	name string
	kind Kind

	mu       sync.Mutex
	closed   bool
	signaled bool // Event
	count    int  // Semaphore
	max      int  // Semaphore
	waiters  map[chan struct{}]struct{}
}

// NewEvent returns an unsignaled manual-reset event.
func NewEvent(name string) *Handle {
	return &Handle{
		id:      nextID.Add(1),
		name:    name,
		kind:    Event,
		waiters: make(map[chan struct{}]struct{}),
	}
}

// NewSemaphore returns a counting semaphore holding initial units, which may
// never hold more than max.
func NewSemaphore(name string, initial, max int) (*Handle, error) {
	if max < 1 || initial < 0 || initial > max {
		return nil, fmt.Errorf("%w: initial=%d max=%d", ErrBadCount, initial, max)
	}
	return &Handle{
		id:      nextID.Add(1),
		name:    name,
		kind:    Semaphore,
		count:   initial,
		max:     max,
		waiters: make(map[chan struct{}]struct{}),
	}, nil
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) String() string {
	return fmt.Sprintf("%s(%s)", h.kind, h.name)
}

// Set signals an event and releases every current and future waiter until
// Reset. Setting a signaled event is a no-op.
func (h *Handle) Set() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.kind != Event {
		return ErrWrongKind
	}
	if !h.signaled {
		h.signaled = true
		h.wakeLocked()
	}
	return nil
}

// Reset returns an event to the unsignaled state.
func (h *Handle) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.kind != Event {
		return ErrWrongKind
	}
	h.signaled = false
	return nil
}

// Release gives one unit back to a semaphore.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.kind != Semaphore {
		return ErrWrongKind
	}
	if h.count >= h.max {
		return ErrMaxCount
	}
	h.count++
	h.wakeLocked()
	return nil
}

// Close destroys the handle. Blocked waiters return ErrClosed. Closing twice
// is a caller bug and reported as ErrClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	h.wakeLocked()
	return nil
}

// tryAcquireLocked reports whether the handle is signaled, taking a unit from
// a semaphore when it is. h.mu must be held.
func (h *Handle) tryAcquireLocked() bool {
	switch h.kind {
	case Event:
		return h.signaled
	case Semaphore:
		if h.count > 0 {
			h.count--
			return true
		}
	}
	return false
}

// wakeLocked nudges every registered waiter to re-check. h.mu must be held.
func (h *Handle) wakeLocked() {
	for ch := range h.waiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
