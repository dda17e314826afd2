// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shutdown decides how a running child is asked to stop when the launcher is terminated.
//
// Jar targets started from the structured configuration understand an in-band "stop"
// command on their standard input. Everything else gets no in-band message and is left
// to the signal forwarded by the supervisor.
package shutdown

import (
	"context"
	"io"
	"sync"

	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/matt-FFFFFF/anyjar/internal/launch"
)

// StopCommand is written to the child's standard input for a cooperative shutdown.
const StopCommand = "stop\n"

// Coordinator runs the shutdown action for one child at most once.
type Coordinator struct {
	cooperative bool
	once        sync.Once
	sent        bool
}

// New returns a Coordinator for the child started from cfg.
func New(cfg config.ServerConfig) *Coordinator {
	return &Coordinator{
		cooperative: Cooperative(cfg),
	}
}

// Cooperative reports whether cfg selects a child that accepts StopCommand.
func Cooperative(cfg config.ServerConfig) bool {
	return cfg.UseOptions && launch.Kind(cfg.ServerTarget) == launch.KindJar
}

// Cooperative reports whether Shutdown will write StopCommand.
func (c *Coordinator) Cooperative() bool {
	return c.cooperative
}

// Shutdown writes StopCommand to stdin and closes it when the child is cooperative,
// and does nothing otherwise. It reports whether a cooperative stop was attempted.
// Only the first call has any effect; later calls return the first call's result.
// Write and close failures mean the child is already gone and are only logged.
// The write is abandoned when ctx is done first; closing stdin then releases it.
func (c *Coordinator) Shutdown(ctx context.Context, stdin io.WriteCloser) bool {
	c.once.Do(func() {
		if !c.cooperative {
			ctxlog.Debug(ctx, "no cooperative shutdown for this target")

			return
		}

		c.sent = writeStop(ctx, stdin)
	})

	return c.sent
}

func writeStop(ctx context.Context, stdin io.WriteCloser) bool {
	done := make(chan error, 1)

	go func() {
		_, err := io.WriteString(stdin, StopCommand)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			ctxlog.Debug(ctx, "could not send stop command", "error", err)
		}
	case <-ctx.Done():
		ctxlog.Debug(ctx, "stop command abandoned", "error", ctx.Err())
	}

	if err := stdin.Close(); err != nil {
		ctxlog.Debug(ctx, "could not close child input", "error", err)
	}

	return true
}
