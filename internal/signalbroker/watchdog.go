// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
)

// Watch monitors the signal channel and cancels the context on the second signal of a given type.
// The first signal of each type is left to whoever else is listening, normally the supervisor.
// Watch returns when sigCh is closed, when ctx is done or after cancelling.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
				Stop(sigCh)
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, no-op", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
