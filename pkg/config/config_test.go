package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPID(pid int) Config {
	c := Default()
	c.ProcessID = pid
	return c
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, Disabled, c.ProcessID)
	assert.Equal(t, Disabled, c.CPUThreshold)
	assert.Equal(t, Disabled, c.MemoryThreshold)
	assert.Equal(t, 1, c.DumpsToCollect)
	assert.Equal(t, 10*time.Second, c.Threshold())
	assert.False(t, c.CPUEnabled())
	assert.False(t, c.MemoryEnabled())
}

func TestTimerThreshold(t *testing.T) {
	c := withPID(1)
	assert.True(t, c.TimerThreshold(), "no thresholds with dumps requested is time based")

	c.CPUThreshold = 50
	assert.False(t, c.TimerThreshold())

	c = withPID(1)
	c.MemoryThreshold = 100
	assert.False(t, c.TimerThreshold())

	c = withPID(1)
	c.DumpsToCollect = 0
	assert.False(t, c.TimerThreshold())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"ok_pid", func(c *Config) {}, nil},
		{"ok_name", func(c *Config) { c.ProcessID = Disabled; c.ProcessName = "foo"; c.WaitForName = true }, nil},
		{"cpu_too_high", func(c *Config) { c.CPUThreshold = 401 }, ErrCPUThreshold},
		{"cpu_max_ok", func(c *Config) { c.CPUThreshold = 400 }, nil},
		{"cpu_negative", func(c *Config) { c.CPUThreshold = -5 }, ErrCPUThreshold},
		{"memory_negative", func(c *Config) { c.MemoryThreshold = -2 }, ErrMemoryThreshold},
		{"dumps_negative", func(c *Config) { c.DumpsToCollect = -3 }, ErrDumpCount},
		{"seconds_zero", func(c *Config) { c.ThresholdSeconds = 0 }, ErrThresholdSeconds},
		{"interval_zero", func(c *Config) { c.SampleInterval = 0 }, ErrSampleInterval},
		{"no_target", func(c *Config) { c.ProcessID = Disabled }, ErrNoTarget},
		{"both_targets", func(c *Config) { c.ProcessName = "foo"; c.WaitForName = true }, ErrTargetConflict},
		{"bad_pid", func(c *Config) { c.ProcessID = 0 }, ErrBadPID},
		{"wait_without_name", func(c *Config) { c.ProcessID = Disabled; c.WaitForName = true }, ErrNoTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := withPID(1234)
			tc.mod(&c)
			err := c.Validate(400)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
name: nginx
cpu: 80
cpu_below: true
dumps: 3
seconds: 5
sample_interval: 500ms
`))
	require.NoError(t, err)
	assert.True(t, c.WaitForName)
	assert.Equal(t, "nginx", c.ProcessName)
	assert.Equal(t, Disabled, c.ProcessID)
	assert.Equal(t, 80, c.CPUThreshold)
	assert.True(t, c.CPUBelow)
	assert.Equal(t, Disabled, c.MemoryThreshold)
	assert.Equal(t, 3, c.DumpsToCollect)
	assert.Equal(t, 5, c.ThresholdSeconds)
	assert.Equal(t, 500*time.Millisecond, c.SampleInterval)
	assert.Equal(t, DefaultGcorePath, c.GcorePath)
	assert.NoError(t, c.Validate(100))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("cpu: [nope"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procdump.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pid: 4321\nmemory: 512\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4321, c.ProcessID)
	assert.False(t, c.WaitForName)
	assert.Equal(t, 512, c.MemoryThreshold)
	assert.False(t, c.TimerThreshold())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
