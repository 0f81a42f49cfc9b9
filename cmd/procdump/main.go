//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ja7ad/procdump/pkg/config"
	"github.com/ja7ad/procdump/pkg/discovery"
	"github.com/ja7ad/procdump/pkg/dump"
	"github.com/ja7ad/procdump/pkg/session"
	"github.com/ja7ad/procdump/pkg/system/proc"
	"github.com/ja7ad/procdump/pkg/trigger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o opts

	root := &cobra.Command{
		Use:   "procdump [OPTIONS] -p PID | -w NAME",
		Short: "Capture core dumps of a process when it crosses a threshold",
		Long: `procdump monitors a Linux process and writes core dumps (through gcore)
when its CPU usage or memory commit crosses a threshold, or at a fixed
interval, until the requested number of dumps is collected, the process
exits, or procdump is interrupted.

Examples:
  procdump -C 80 -n 3 -s 5 -p 1234
  procdump -M 2048 -w nginx
  procdump --config procdump.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(config.MaxCPU()); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return run(cmd.Context(), cfg)
		},
	}
	o.register(root.Flags())
	return root
}

func setupLogging(diag bool) {
	level := slog.LevelInfo
	if diag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, cfg config.Config) error {
	setupLogging(cfg.Diagnostics)

	// Subscribed for the whole run so that SIGINT and SIGTERM never take
	// their default action; the signal thread drains it later.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	table := proc.System{}
	s, err := session.New(cfg, table)
	if err != nil {
		return err
	}
	s.PrintBanner(os.Stdout)

	if !cfg.WaitForName {
		pid, err := discovery.ResolveByPID(table, cfg.ProcessID)
		if err != nil {
			return err
		}
		name, _ := discovery.ProcessName(table, pid)
		s.SetTarget(pid, name)
	}
	s.PrintConfiguration(os.Stdout)

	if cfg.WaitForName {
		fmt.Printf("Waiting for process '%s' to launch...\n", cfg.ProcessName)
		pid, err := waitForTarget(ctx, sigs, table, cfg.ProcessName)
		switch {
		case errors.Is(err, context.Canceled):
			return closeSession(s)
		case errors.Is(err, discovery.ErrAmbiguousTarget):
			s.MarkTerminated()
			slog.Error("Refusing to pick one of several processes", "name", cfg.ProcessName, "err", err)
			return errors.Join(err, closeSession(s))
		case err != nil:
			return err
		}
		s.SetTarget(pid, cfg.ProcessName)
		slog.Info("Found process", "name", cfg.ProcessName, "pid", pid)
	}

	m := trigger.New(s, trigger.Deps{
		CPU:     proc.NewCPUSampler(),
		Memory:  proc.NewCommitSampler(),
		Dumper:  dump.Gcore{Path: cfg.GcorePath, Dir: cfg.OutputDir},
		Signals: sigs,
	})
	if err := m.CreateTriggerThreads(); err != nil {
		s.SetQuit(true)
		return errors.Join(err, m.WaitForAllThreadsToTerminate())
	}
	if err := s.BeginMonitoring(); err != nil {
		s.SetQuit(true)
		return errors.Join(err, m.WaitForAllThreadsToTerminate())
	}
	if err := m.WaitForAllThreadsToTerminate(); err != nil {
		return err
	}

	if s.Terminated() {
		slog.Info("Target process exited", "pid", s.PID())
	}
	slog.Info("Monitoring stopped", "dumps", s.DumpsCollected())
	return closeSession(s)
}

// waitForTarget scans for name until one process matches, the scan fails,
// or a signal arrives on sigs. A signal is reported as context.Canceled.
func waitForTarget(ctx context.Context, sigs <-chan os.Signal, t proc.Table, name string) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type found struct {
		pid int
		err error
	}
	res := make(chan found, 1)
	go func() {
		pid, err := discovery.WaitForName(ctx, t, name, discovery.DefaultScanInterval)
		res <- found{pid, err}
	}()

	select {
	case sig := <-sigs:
		cancel()
		<-res
		slog.Info("Quit", "signal", sig.String())
		return proc.NoPID, context.Canceled
	case r := <-res:
		return r.pid, r.err
	}
}

// closeSession releases the session handles. Failing to do so means the
// handle table is corrupt: the process ends right away.
func closeSession(s *session.Session) error {
	if err := s.Close(); err != nil {
		slog.Error("failed to release session", "err", err)
		os.Exit(-1)
	}
	return nil
}
