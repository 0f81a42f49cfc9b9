// Package config holds the monitoring options: which process to watch, what
// triggers a dump, and how many dumps to take. A Config is a snapshot: once
// monitoring begins nothing changes it.
package config

import (
	"fmt"
	"runtime"
	"time"
)

const (
	// Disabled marks a threshold that is not set.
	Disabled = -1

	DefaultDumpsToCollect   = 1
	DefaultThresholdSeconds = 10
	DefaultSampleInterval   = time.Second
	DefaultGcorePath        = "gcore"
	DefaultOutputDir        = "."
)

// Config is the immutable input of a monitoring session.
type Config struct {
	// Target. Exactly one of ProcessID and WaitForName is set.
	ProcessID   int    `yaml:"pid"`
	ProcessName string `yaml:"name"`
	WaitForName bool   `yaml:"-"`

	// CPU threshold in percent of one core (0 .. 100*NumCPU), or Disabled.
	CPUThreshold int  `yaml:"cpu"`
	CPUBelow     bool `yaml:"cpu_below"`

	// Memory commit threshold in MiB, or Disabled.
	MemoryThreshold int  `yaml:"memory"`
	MemoryBelow     bool `yaml:"memory_below"`

	DumpsToCollect   int `yaml:"dumps"`
	ThresholdSeconds int `yaml:"seconds"`

	// SampleInterval paces the CPU and commit threads between samples.
	SampleInterval time.Duration `yaml:"sample_interval"`

	Diagnostics bool   `yaml:"diag"`
	GcorePath   string `yaml:"gcore"`
	OutputDir   string `yaml:"output_dir"`
}

// Default returns a Config with every threshold disabled and no target.
func Default() Config {
	return Config{
		ProcessID:        Disabled,
		CPUThreshold:     Disabled,
		MemoryThreshold:  Disabled,
		DumpsToCollect:   DefaultDumpsToCollect,
		ThresholdSeconds: DefaultThresholdSeconds,
		SampleInterval:   DefaultSampleInterval,
		GcorePath:        DefaultGcorePath,
		OutputDir:        DefaultOutputDir,
	}
}

// MaxCPU is the highest valid CPU threshold on this host.
func MaxCPU() int { return 100 * runtime.NumCPU() }

func (c Config) CPUEnabled() bool    { return c.CPUThreshold != Disabled }
func (c Config) MemoryEnabled() bool { return c.MemoryThreshold != Disabled }

// TimerThreshold reports pure time-based triggering: dumps were requested
// but neither a CPU nor a memory threshold was set.
func (c Config) TimerThreshold() bool {
	return c.DumpsToCollect > 0 && !c.CPUEnabled() && !c.MemoryEnabled()
}

// Threshold is the pause between consecutive dumps of one trigger.
func (c Config) Threshold() time.Duration {
	return time.Duration(c.ThresholdSeconds) * time.Second
}

// Validate checks the snapshot the way the command line does. maxCPU is
// usually MaxCPU().
func (c Config) Validate(maxCPU int) error {
	if c.CPUEnabled() && (c.CPUThreshold < 0 || c.CPUThreshold > maxCPU) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrCPUThreshold, c.CPUThreshold, maxCPU)
	}
	if c.MemoryEnabled() && c.MemoryThreshold < 0 {
		return fmt.Errorf("%w: %d", ErrMemoryThreshold, c.MemoryThreshold)
	}
	if c.DumpsToCollect < 0 {
		return fmt.Errorf("%w: %d", ErrDumpCount, c.DumpsToCollect)
	}
	if c.ThresholdSeconds <= 0 {
		return fmt.Errorf("%w: %d", ErrThresholdSeconds, c.ThresholdSeconds)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrSampleInterval, c.SampleInterval)
	}

	hasPID := c.ProcessID != Disabled
	switch {
	case hasPID && c.WaitForName:
		return ErrTargetConflict
	case !hasPID && !c.WaitForName:
		return ErrNoTarget
	case hasPID && c.ProcessID <= 0:
		return fmt.Errorf("%w: %d", ErrBadPID, c.ProcessID)
	case c.WaitForName && c.ProcessName == "":
		return ErrNoTarget
	}
	return nil
}
