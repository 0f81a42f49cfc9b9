//go:build linux

package proc

import (
	"fmt"
	"sync"
	"time"

	"github.com/ja7ad/procdump/pkg/types"
	"github.com/shirou/gopsutil/v3/process"
)

// CPUSampler computes CPU usage of a process from utime+stime deltas in
// /proc/<pid>/stat. 100 means one fully busy core, so the maximum is
// 100 * NumCPU.
type CPUSampler struct {
	clkTck int

	// Overridable in tests.
	readTimes func(pid int) (utime, stime uint64, err error)
	now       func() time.Time

	mu   sync.Mutex
	prev map[int]cpuMark
}

type cpuMark struct {
	jiffies uint64
	at      time.Time
}

func NewCPUSampler() *CPUSampler {
	return &CPUSampler{
		clkTck:    ClockTicks(),
		readTimes: ReadProcTimes,
		now:       time.Now,
		prev:      make(map[int]cpuMark),
	}
}

// CPUPercent returns the CPU usage of pid since the previous call for the
// same pid. The first call only records a baseline and returns ErrWarmup.
func (c *CPUSampler) CPUPercent(pid int) (float64, error) {
	ut, st, err := c.readTimes(pid)
	if err != nil {
		return 0, fmt.Errorf("cpu sample %d: %w", pid, err)
	}
	now := c.now()
	j := ut + st

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.prev[pid]
	c.prev[pid] = cpuMark{jiffies: j, at: now}
	if !ok {
		return 0, ErrWarmup
	}

	dt := now.Sub(prev.at).Seconds()
	busy := float64(deltaU64(j, prev.jiffies)) / float64(c.clkTck)
	return 100 * safeDiv(busy, dt), nil
}

// CommitSampler reports the memory commit of a process: resident set plus
// swapped-out pages.
type CommitSampler struct{}

func NewCommitSampler() CommitSampler { return CommitSampler{} }

// CommitMB returns the memory commit of pid in MiB.
func (CommitSampler) CommitMB(pid int) (uint64, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, fmt.Errorf("commit sample %d: %w", pid, err)
	}
	mi, err := p.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("commit sample %d: %w", pid, err)
	}
	return types.Bytes(mi.RSS + mi.Swap).WholeMB(), nil
}
