// Package proc is the monitor's window on the Linux process table.
//
//   - Table: the four operations the monitor needs from the OS (list PIDs,
//     read a command line, probe liveness, send a signal). System is the
//     live implementation, backed by gopsutil and x/sys/unix; tests use
//     fakes.
//
//   - ProcessName / NameOf: name a process from its argument list. A
//     leading "sudo" is skipped and the directory part of the first
//     remaining token is dropped:
//
//     ["sudo", "/usr/bin/foo", "arg1"] -> "foo"
//     ["/usr/bin/foo"]                 -> "foo"
//     ["foo"]                          -> "foo"
//
//   - CPUSampler: CPU usage from /proc/<pid>/stat utime+stime deltas over
//     wall time, in percent of one core (0 .. 100*NumCPU). The first sample
//     per PID returns ErrWarmup.
//
//   - CommitSampler: memory commit (RSS + swap) in MiB.
//
// Liveness uses kill(pid, 0). Any failure, including EPERM for another
// user's process, is reported as "not alive".
package proc
