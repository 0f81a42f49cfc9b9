package session

import (
	"fmt"
	"io"
	"log/slog"
)

const banner = `
procdump - process dump utility
Monitors a process and writes a dump file when the process exceeds the
specified criteria.

`

// PrintBanner writes the banner to w the first time it is called, from any
// thread, and reports whether this call printed it.
func (s *Session) PrintBanner(w io.Writer) bool {
	printed := false
	s.bannerOnce.Do(func() {
		fmt.Fprint(w, banner)
		printed = true
		if err := s.BannerPrinted.Set(); err != nil {
			slog.Debug("set banner printed", "err", err)
		}
	})
	return printed
}

// PrintConfiguration writes the monitoring settings to w once per session
// and reports whether this call printed them.
func (s *Session) PrintConfiguration(w io.Writer) bool {
	printed := false
	s.configOnce.Do(func() {
		s.writeConfiguration(w)
		printed = true
		if err := s.ConfigurationPrinted.Set(); err != nil {
			slog.Debug("set configuration printed", "err", err)
		}
	})
	return printed
}

func (s *Session) writeConfiguration(w io.Writer) {
	cfg := s.cfg

	fmt.Fprintf(w, "Process:\t\t%s", s.ProcessName())
	if s.WaitingForProcessName() {
		fmt.Fprint(w, " (pending)\n")
	} else {
		fmt.Fprintf(w, " (%d)\n", s.PID())
	}

	switch {
	case !cfg.CPUEnabled():
		fmt.Fprint(w, "CPU Threshold:\t\tn/a\n")
	case cfg.CPUBelow:
		fmt.Fprintf(w, "CPU Threshold:\t\t<%d\n", cfg.CPUThreshold)
	default:
		fmt.Fprintf(w, "CPU Threshold:\t\t>=%d\n", cfg.CPUThreshold)
	}

	switch {
	case !cfg.MemoryEnabled():
		fmt.Fprint(w, "Commit Threshold:\tn/a\n")
	case cfg.MemoryBelow:
		fmt.Fprintf(w, "Commit Threshold:\t<%d\n", cfg.MemoryThreshold)
	default:
		fmt.Fprintf(w, "Commit Threshold:\t>=%d\n", cfg.MemoryThreshold)
	}

	fmt.Fprintf(w, "Threshold Seconds:\t%d\n", cfg.ThresholdSeconds)
	fmt.Fprintf(w, "Number of Dumps:\t%d\n", cfg.DumpsToCollect)
}
