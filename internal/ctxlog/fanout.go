// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"log/slog"
)

// Fanout is a slog.Handler that passes every record to each of its handlers
// that is enabled for the record's level.
type Fanout struct {
	handlers []slog.Handler
}

// NewFanout returns a handler sending records to all of handlers. Nil handlers are skipped.
func NewFanout(handlers ...slog.Handler) *Fanout {
	hs := make([]slog.Handler, 0, len(handlers))

	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}

	return &Fanout{handlers: hs}
}

// Enabled reports whether any handler is enabled for level.
func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle passes a clone of r to each enabled handler and joins their errors.
func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs error

	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}

// WithAttrs applies attrs to every handler.
func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithAttrs(attrs)
	}

	return &Fanout{handlers: hs}
}

// WithGroup applies the group to every handler.
func (f *Fanout) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithGroup(name)
	}

	return &Fanout{handlers: hs}
}
