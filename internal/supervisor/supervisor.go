// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/console"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/matt-FFFFFF/anyjar/internal/forwarder"
	"github.com/matt-FFFFFF/anyjar/internal/launch"
	"github.com/matt-FFFFFF/anyjar/internal/relay"
	"github.com/matt-FFFFFF/anyjar/internal/shutdown"
	"github.com/matt-FFFFFF/anyjar/internal/signalbroker"
	"github.com/spf13/afero"
)

const (
	taskStdout    = "stdout relay"
	taskStderr    = "stderr relay"
	taskForwarder = "stdin forwarder"

	// after the read ends are closed, relays normally return almost at once
	abandonWait = 100 * time.Millisecond
)

// Supervisor owns one child process for one run.
type Supervisor struct {
	cfg         config.ServerConfig
	dir         string
	goos        string
	fs          afero.Fs
	input       io.Reader
	console     *console.Console
	childLog    *slog.Logger
	gracePeriod time.Duration
	stopTimeout time.Duration
	stateHook   func(State)
	sigCh       <-chan os.Signal
	state       State
}

type exitStatus struct {
	state *os.ProcessState
	err   error
}

// New returns a Supervisor for cfg.
func New(cfg config.ServerConfig, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:         cfg,
		goos:        runtime.GOOS,
		gracePeriod: DefaultGracePeriod,
		stopTimeout: DefaultStopTimeout,
		state:       Idle,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.dir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.dir = wd
		}
	}

	if s.fs == nil {
		s.fs = config.FsFactory()
	}

	if s.input == nil {
		s.input = os.Stdin
	}

	if s.console == nil {
		s.console = console.New(os.Stdout, os.Stderr, console.WithAutoColour())
	}

	return s
}

// State returns the current state.
func (s *Supervisor) State() State {
	return s.state
}

func (s *Supervisor) setState(ctx context.Context, res *Result, st State) {
	ctxlog.Debug(ctx, "state change", "from", s.state.String(), "to", st.String())

	s.state = st
	res.State = st

	if s.stateHook != nil {
		s.stateHook(st)
	}
}

// Run validates the configuration, starts the child, bridges its streams until it
// exits and tears everything down.
//
// An invalid configuration returns ErrInvalidConfig and a failed start returns
// ErrCouldNotStartProcess; a termination signal queued before the start returns
// ErrInterrupted. In these cases no child is running when Run returns.
// Failures after a successful start are logged and not returned. The Result is
// never nil.
func (s *Supervisor) Run(ctx context.Context) (*Result, error) {
	res := &Result{ExitCode: -1}

	s.setState(ctx, res, Idle)

	sigCh := s.sigCh
	if sigCh == nil {
		ch := signalbroker.New(ctx)
		defer signalbroker.Stop(ch)

		sigCh = ch
	}

	s.setState(ctx, res, Validating)

	ctxlog.Info(ctx, fmt.Sprintf("Loaded config: %s", s.cfg), "mode", s.cfg.Mode())

	warnings, err := config.Validate(s.fs, s.cfg, s.dir, s.goos)
	for _, w := range warnings {
		ctxlog.Warn(ctx, "configuration warning", "warning", w)
		s.console.Warning("Warning: %v", w)
	}

	if err != nil {
		ctxlog.Error(ctx, "configuration is invalid", "error", err)
		s.reportInvalid(err)
		s.setState(ctx, res, Terminated)

		return res, errors.Join(ErrInvalidConfig, err)
	}

	inv := launch.Build(s.cfg)
	res.Invocation = inv

	if len(inv) == 0 || inv.Program() == "" {
		ctxlog.Error(ctx, "configuration produced an empty command")
		s.console.Warning("The startup command is empty, nothing to run.")
		s.setState(ctx, res, Terminated)

		return res, errors.Join(ErrInvalidConfig, ErrEmptyInvocation)
	}

	if sig, ok := pending(sigCh); ok {
		ctxlog.Warn(ctx, "termination requested before the server process started", "signal", sig.String())
		s.console.Notice("Termination requested, the server will not be started.")
		s.setState(ctx, res, Terminated)

		return res, ErrInterrupted
	}

	ctxlog.Info(ctx, "Starting server with command: "+inv.String())

	ps, p, err := s.start(ctx, inv)
	if err != nil {
		ctxlog.Error(ctx, "could not start server process", "error", err)
		s.console.Warning("Could not start %s: %v", inv.Program(), err)
		s.setState(ctx, res, Terminated)

		return res, err
	}

	res.Spawned = true
	res.Pid = ps.Pid

	s.setState(ctx, res, Spawned)
	ctxlog.Info(ctx, "Server process started successfully.", "pid", ps.Pid)

	s.supervise(ctx, res, ps, p, sigCh)

	s.setState(ctx, res, Terminated)

	return res, nil
}

// pending returns a signal that has already been delivered to sigCh, without blocking.
func pending(sigCh <-chan os.Signal) (os.Signal, bool) {
	select {
	case sig := <-sigCh:
		return sig, true
	default:
		return nil, false
	}
}

func (s *Supervisor) reportInvalid(err error) {
	switch {
	case errors.Is(err, config.ErrEmptyManualCommand):
		s.console.Warning("manual-startup-command is empty. Set it, or set use-options to true and point server-jar at the file to run.")
	case errors.Is(err, config.ErrTargetNotFound):
		s.console.Warning("The file to run was not found: %q. Check server-jar in the configuration.", s.cfg.ServerTarget)
	case errors.Is(err, config.ErrTargetIsDirectory):
		s.console.Warning("server-jar points at a directory: %q. It must name a file.", s.cfg.ServerTarget)
	default:
		s.console.Warning("Invalid configuration: %v", err)
	}
}

// start creates the pipes and the child process. The child ends of the pipes are
// closed in the parent whatever the outcome.
func (s *Supervisor) start(ctx context.Context, inv launch.Invocation) (*os.Process, *pipes, error) {
	path, err := resolveProgram(inv.Program(), s.dir)
	if err != nil {
		return nil, nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	if path != inv.Program() {
		ctxlog.Debug(ctx, "resolved program", "program", inv.Program(), "path", path)
	}

	p, err := newPipes()
	if err != nil {
		return nil, nil, err
	}

	ps, err := os.StartProcess(path, inv, &os.ProcAttr{
		Dir:   s.dir,
		Env:   os.Environ(),
		Files: p.childFiles(),
		Sys:   sysProcAttr(),
	})

	p.closeChildEnds()

	if err != nil {
		p.closeAll()

		return nil, nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	return ps, p, nil
}

// resolveProgram finds the executable for program. A bare name is looked up on PATH
// and then in dir, a relative path is taken relative to dir.
func resolveProgram(program, dir string) (string, error) {
	if filepath.IsAbs(program) {
		return program, nil
	}

	if strings.ContainsAny(program, `/\`) {
		return filepath.Join(dir, program), nil
	}

	if path, err := exec.LookPath(program); err == nil {
		return path, nil
	}

	local := filepath.Join(dir, program)
	if fi, err := os.Stat(local); err == nil && !fi.IsDir() {
		return local, nil
	}

	return "", &exec.Error{Name: program, Err: exec.ErrNotFound}
}

// supervise runs the child from Spawned until it has exited and the tasks are drained.
func (s *Supervisor) supervise(ctx context.Context, res *Result, ps *os.Process, p *pipes, sigCh <-chan os.Signal) {
	logger := ctxlog.Logger(ctx).With("pid", ps.Pid)

	childLog := s.childLog
	if childLog == nil {
		childLog = logger
	}

	stdin := &stdinWriter{f: p.stdinW}
	coordinator := shutdown.New(s.cfg)

	exited := make(chan exitStatus, 1)

	go func() {
		st, err := ps.Wait()
		exited <- exitStatus{state: st, err: err}
	}()

	// relays drain to EOF and are only cancelled when the grace period runs out
	relayCtx, cancelRelays := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRelays()

	fwdCtx, cancelForwarder := context.WithCancel(ctx)
	defer cancelForwarder()

	t := newTasks()
	t.start(ctx, taskStdout, func() error {
		return relay.Run(relayCtx, p.stdoutR,
			func(line string) { childLog.Info(line) },
			s.console.Stdout,
		)
	})
	t.start(ctx, taskStderr, func() error {
		return relay.Run(relayCtx, p.stderrR,
			func(line string) { childLog.Error(line) },
			s.console.Stderr,
		)
	})
	fwdDone := t.start(ctx, taskForwarder, func() error {
		return forwarder.Run(fwdCtx, s.input, stdin)
	})
	t.seal()

	s.setState(ctx, res, Running)

	status := s.waitForExit(ctx, res, ps, stdin, coordinator, cancelForwarder, fwdDone, exited, sigCh)

	if s.state != Draining {
		s.setState(ctx, res, Draining)
	}

	cancelForwarder()

	if status.err != nil {
		logger.Error("error waiting for server process", "error", status.err)
	}

	if status.state != nil {
		res.ExitCode = status.state.ExitCode()
	}

	ctxlog.Info(ctx, fmt.Sprintf("Server process exited with code: %d", res.ExitCode))

	if ctx.Err() != nil {
		logger.Error("interrupted while waiting for server process", "error", ctx.Err())
	}

	_ = stdin.Close()

	s.drain(ctx, t, p, cancelRelays)
}

// waitForExit blocks until the child has exited, handling termination requests on the way.
func (s *Supervisor) waitForExit(
	ctx context.Context,
	res *Result,
	ps *os.Process,
	stdin *stdinWriter,
	coordinator *shutdown.Coordinator,
	cancelForwarder context.CancelFunc,
	fwdDone <-chan struct{},
	exited <-chan exitStatus,
	sigCh <-chan os.Signal,
) exitStatus {
	logger := ctxlog.Logger(ctx).With("pid", ps.Pid)

	var (
		stopTimer <-chan time.Time
		done      = ctx.Done()
		first     os.Signal
	)

	kill := func(reason string) {
		logger.Warn("killing server process", "reason", reason)

		if err := killTree(ps); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logger.Error("process kill error", "error", err)
		}

		res.Forced = true
	}

	for {
		select {
		case st := <-exited:
			return st

		case sig := <-sigCh:
			if first != nil {
				if sig == first {
					kill("received duplicate signal " + sig.String())
				}

				continue
			}

			first = sig
			logger.Info("received signal", "signal", sig.String())
			s.setState(ctx, res, Draining)

			deadline := time.Now().Add(s.stopTimeout)
			timer := time.NewTimer(s.stopTimeout)
			defer timer.Stop()

			res.StopSent = requestStop(ctx, stdin, coordinator, cancelForwarder, fwdDone, deadline)

			if res.StopSent {
				s.console.Notice("Sent stop to the server, waiting for it to exit...")
			} else if err := signalTree(ps, sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logger.Info("failed to forward signal", "signal", sig.String(), "error", err)
			}

			stopTimer = timer.C

		case <-stopTimer:
			stopTimer = nil

			kill(fmt.Sprintf("did not exit within %s", s.stopTimeout))

		case <-done:
			done = nil

			kill("context done")
		}
	}
}

// requestStop cancels the forwarder and, for a cooperative child, waits for it to return
// before the coordinator writes the stop command. Both waits end at deadline.
func requestStop(
	ctx context.Context,
	stdin io.WriteCloser,
	coordinator *shutdown.Coordinator,
	cancelForwarder context.CancelFunc,
	fwdDone <-chan struct{},
	deadline time.Time,
) bool {
	cancelForwarder()

	if !coordinator.Cooperative() {
		return false
	}

	stopCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	select {
	case <-fwdDone:
	case <-stopCtx.Done():
		ctxlog.Warn(ctx, "stdin forwarder did not stop before the stop deadline")
	}

	return coordinator.Shutdown(stopCtx, stdin)
}

// drain waits for the stream tasks for the grace period, then closes the read ends of
// the output pipes so that blocked relays return, and abandons whatever is left.
func (s *Supervisor) drain(ctx context.Context, t *tasks, p *pipes, cancelRelays context.CancelFunc) {
	grace := time.NewTimer(s.gracePeriod)
	defer grace.Stop()

	select {
	case <-t.Done():
		p.closeReaders()

		return
	case <-grace.C:
	}

	ctxlog.Warn(ctx, "stream tasks did not finish within the grace period", "grace", s.gracePeriod.String(), "tasks", t.Running())
	cancelRelays()
	p.closeReaders()

	select {
	case <-t.Done():
	case <-time.After(abandonWait):
		ctxlog.Warn(ctx, "abandoning stream tasks", "tasks", t.Running())
	}
}
