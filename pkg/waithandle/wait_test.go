package waithandle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitAny_LowestIndexWins(t *testing.T) {
	quit := NewEvent("quit")
	slot, err := NewSemaphore("slot", 1, 1)
	require.NoError(t, err)

	require.NoError(t, quit.Set())

	res, err := WaitAny([]*Handle{quit, slot}, 0)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: Signaled, Index: 0}, res)

	// The unreported semaphore must still hold its unit.
	res, err = WaitOne(slot, 0)
	require.NoError(t, err)
	assert.Equal(t, Signaled, res.Status, "WaitAny consumed a handle it did not report")
}

func TestWaitAny_ReportsSecondWhenFirstUnsignaled(t *testing.T) {
	quit := NewEvent("quit")
	slot, err := NewSemaphore("slot", 1, 1)
	require.NoError(t, err)

	res, err := WaitAny([]*Handle{quit, slot}, 0)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: Signaled, Index: 1}, res)

	res, err = WaitOne(slot, 0)
	require.NoError(t, err)
	assert.Equal(t, Timeout, res.Status, "slot should have been consumed")
}

func TestWaitAny_Timeout(t *testing.T) {
	a := NewEvent("a")
	b := NewEvent("b")

	start := time.Now()
	res, err := WaitAny([]*Handle{a, b}, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, Timeout, res.Status)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestWaitAny_WakesOnLaterSignal(t *testing.T) {
	a := NewEvent("a")
	b := NewEvent("b")

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = b.Set()
	}()

	res, err := WaitAny([]*Handle{a, b}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: Signaled, Index: 1}, res)
}

func TestWaitAny_DuplicateAndReorderedHandles(t *testing.T) {
	a := NewEvent("a")
	b := NewEvent("b")
	require.NoError(t, a.Set())

	// Reversed creation order and duplicates must not deadlock.
	res, err := WaitAny([]*Handle{b, a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: Signaled, Index: 1}, res)
}

func TestWaitAny_Empty(t *testing.T) {
	_, err := WaitAny(nil, 0)
	assert.ErrorIs(t, err, ErrNoHandles)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "signaled(1)", Result{Status: Signaled, Index: 1}.String())
	assert.Equal(t, "timeout", Result{Status: Timeout}.String())
	assert.Equal(t, "abandoned", Result{Status: Abandoned}.String())
}
