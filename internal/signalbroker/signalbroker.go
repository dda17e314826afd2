// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker registers interest in the OS signals that ask the launcher to terminate.
// By default it listens for os.Interrupt, syscall.SIGINT, syscall.SIGTERM and syscall.SIGQUIT.
//
// It also contains a watchdog that cancels a context when two signals of the
// same type are received.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
)

const chanSize = 2

var termSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// TermSignals returns a copy of the signals New listens for by default.
func TermSignals() []os.Signal {
	return append([]os.Signal(nil), termSignals...)
}

// New creates a channel that receives the given signals, or the termination signals when none are given.
// Registration is in place when New returns.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, chanSize)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop stops delivery to ch. The channel is left open.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
