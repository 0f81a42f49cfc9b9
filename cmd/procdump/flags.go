//go:build linux

package main

import (
	"fmt"
	"time"

	"github.com/ja7ad/procdump/pkg/config"
	"github.com/spf13/pflag"
)

type opts struct {
	configPath string

	// triggers
	cpu      int
	lowerCPU int
	mem      int
	lowerMem int
	dumps    int
	seconds  int
	interval time.Duration

	// target
	pid  int
	name string

	// capture
	gcore  string
	outDir string

	diag bool
}

func (o *opts) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "read options from a YAML file (flags override it)")

	fs.IntVarP(&o.cpu, "cpu", "C", 0, "trigger when CPU usage is at or above this percentage (100 per core)")
	fs.IntVarP(&o.lowerCPU, "lower-cpu", "c", 0, "trigger when CPU usage is below this percentage")
	fs.IntVarP(&o.mem, "memory", "M", 0, "trigger when memory commit is at or above this many MB")
	fs.IntVarP(&o.lowerMem, "lower-mem", "m", 0, "trigger when memory commit is below this many MB")
	fs.IntVarP(&o.dumps, "number-of-dumps", "n", config.DefaultDumpsToCollect, "number of dumps to collect before exiting")
	fs.IntVarP(&o.seconds, "time-between-dumps", "s", config.DefaultThresholdSeconds, "seconds between consecutive dumps of one trigger")
	fs.DurationVar(&o.interval, "sample-interval", config.DefaultSampleInterval, "pause between two CPU or memory samples")

	fs.IntVarP(&o.pid, "pid", "p", 0, "PID of the process to monitor")
	fs.StringVarP(&o.name, "wait", "w", "", "wait for a process with this name to launch, then monitor it")

	fs.StringVar(&o.gcore, "gcore", config.DefaultGcorePath, "gcore executable used to capture dumps")
	fs.StringVar(&o.outDir, "output-dir", config.DefaultOutputDir, "directory receiving dump files")

	fs.BoolVarP(&o.diag, "diag", "d", false, "write diagnostic logs")
}

// config builds the session configuration: the --config file (or the
// defaults) with every flag given on the command line applied on top.
func (o *opts) config(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}
	set := fs.Changed

	// A negative value would alias config.Disabled and silently turn the
	// trigger off.
	for _, f := range []struct {
		name  string
		value int
		err   error
	}{
		{"cpu", o.cpu, config.ErrCPUThreshold},
		{"lower-cpu", o.lowerCPU, config.ErrCPUThreshold},
		{"memory", o.mem, config.ErrMemoryThreshold},
		{"lower-mem", o.lowerMem, config.ErrMemoryThreshold},
	} {
		if set(f.name) && f.value < 0 {
			return config.Config{}, fmt.Errorf("%w: --%s %d", f.err, f.name, f.value)
		}
	}

	switch {
	case set("cpu") && set("lower-cpu"):
		return config.Config{}, fmt.Errorf("%w: -C and -c", config.ErrDuplicateThreshold)
	case set("cpu"):
		cfg.CPUThreshold, cfg.CPUBelow = o.cpu, false
	case set("lower-cpu"):
		cfg.CPUThreshold, cfg.CPUBelow = o.lowerCPU, true
	}

	switch {
	case set("memory") && set("lower-mem"):
		return config.Config{}, fmt.Errorf("%w: -M and -m", config.ErrDuplicateThreshold)
	case set("memory"):
		cfg.MemoryThreshold, cfg.MemoryBelow = o.mem, false
	case set("lower-mem"):
		cfg.MemoryThreshold, cfg.MemoryBelow = o.lowerMem, true
	}

	switch {
	case set("pid") && set("wait"):
		return config.Config{}, config.ErrTargetConflict
	case set("pid"):
		cfg.ProcessID, cfg.ProcessName, cfg.WaitForName = o.pid, "", false
	case set("wait"):
		cfg.ProcessID, cfg.ProcessName, cfg.WaitForName = config.Disabled, o.name, true
	}

	if set("number-of-dumps") {
		cfg.DumpsToCollect = o.dumps
	}
	if set("time-between-dumps") {
		cfg.ThresholdSeconds = o.seconds
	}
	if set("sample-interval") {
		cfg.SampleInterval = o.interval
	}
	if set("gcore") {
		cfg.GcorePath = o.gcore
	}
	if set("output-dir") {
		cfg.OutputDir = o.outDir
	}
	if set("diag") {
		cfg.Diagnostics = o.diag
	}
	return cfg, nil
}
