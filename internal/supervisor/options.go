// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/matt-FFFFFF/anyjar/internal/console"
	"github.com/spf13/afero"
)

const (
	// DefaultGracePeriod bounds the wait for the stream tasks after the child has gone.
	DefaultGracePeriod = 5 * time.Second
	// DefaultStopTimeout bounds the wait for the child to exit after a termination request.
	DefaultStopTimeout = 30 * time.Second
)

// Option configures a Supervisor.
type Option func(s *Supervisor)

// WithDir sets the working directory of the child and the base for relative targets.
func WithDir(dir string) Option {
	return func(s *Supervisor) {
		s.dir = dir
	}
}

// WithGOOS overrides the platform used for validation.
func WithGOOS(goos string) Option {
	return func(s *Supervisor) {
		s.goos = goos
	}
}

// WithFs sets the filesystem used to validate the target.
func WithFs(fs afero.Fs) Option {
	return func(s *Supervisor) {
		s.fs = fs
	}
}

// WithInput sets the operator input forwarded to the child, os.Stdin by default.
func WithInput(r io.Reader) Option {
	return func(s *Supervisor) {
		s.input = r
	}
}

// WithConsole sets the console sink.
func WithConsole(c *console.Console) Option {
	return func(s *Supervisor) {
		s.console = c
	}
}

// WithChildLogger sets the logger that records the child's output.
// Standard output lines are logged at INFO and standard error lines at ERROR.
func WithChildLogger(l *slog.Logger) Option {
	return func(s *Supervisor) {
		s.childLog = l
	}
}

// WithGracePeriod sets how long the stream tasks may take to finish once draining starts.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.gracePeriod = d
		}
	}
}

// WithStopTimeout sets how long the child may take to exit after a termination request.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// WithStateHook registers fn to be called synchronously on every state change, Idle included.
func WithStateHook(fn func(State)) Option {
	return func(s *Supervisor) {
		s.stateHook = fn
	}
}

// WithSignals sets the channel termination signals arrive on. Signals already queued on ch
// when Run is called stop the run before the child is started. Without it, Run registers
// its own channel.
func WithSignals(ch <-chan os.Signal) Option {
	return func(s *Supervisor) {
		s.sigCh = ch
	}
}
