//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ClockTicks returns the number of jiffies (clock ticks) per second.
// It first checks the env var CLK_TCK (useful for testing), otherwise
// falls back to 100 (common default).
//
// Note: On real systems, the authoritative way is `sysconf(_SC_CLK_TCK)`,
// but calling that requires cgo.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// ReadProcTimes parses /proc/<pid>/stat and returns utime and stime in
// jiffies.
//
// comm (2nd field) is in parens and may contain spaces, so everything up to
// the last ") " is skipped.
func ReadProcTimes(pid int) (utime, stime uint64, err error) {
	f, e := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, ErrNoStat
	}
	return parseStatTimes(sc.Text())
}

func parseStatTimes(line string) (utime, stime uint64, err error) {
	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, 0, ErrNoStat
	}
	fields := strings.Fields(line[i+2:])

	// utime is the 14th field overall, stime the 15th; relative to the slice
	// after comm they sit at 11 and 12.
	if len(fields) < 13 {
		return 0, 0, ErrShortStat
	}
	if utime, err = strconv.ParseUint(fields[11], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("proc: utime: %w", err)
	}
	if stime, err = strconv.ParseUint(fields[12], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("proc: stime: %w", err)
	}
	return utime, stime, nil
}
