// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// FileTimeFormat is the timestamp layout used by FileHandler.
const FileTimeFormat = "2006-01-02 15:04:05"

// FileHandler writes one plain text line per record:
//
//	2006-01-02 15:04:05 LEVEL: message key=value ...
//
// It is safe for concurrent use and every handler derived from it shares the writer lock.
type FileHandler struct {
	w      io.Writer
	m      *sync.Mutex
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewFileHandler returns a FileHandler writing to w. A nil opts or nil Level logs every level.
func NewFileHandler(w io.Writer, opts *slog.HandlerOptions) *FileHandler {
	var level slog.Leveler = slog.Level(-128)
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &FileHandler{
		w:     w,
		m:     &sync.Mutex{},
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *FileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// WithAttrs returns a handler that prepends attrs to every record.
func (h *FileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), h.qualify(attrs)...)

	return &c
}

// WithGroup returns a handler that qualifies subsequent attribute keys with name.
func (h *FileHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(append(make([]string, 0, len(h.groups)+1), h.groups...), name)

	return &c
}

// Handle formats and writes the record.
func (h *FileHandler) Handle(_ context.Context, r slog.Record) error {
	sb := strings.Builder{}
	sb.WriteString(r.Time.Format(FileTimeFormat))
	sb.WriteString(" ")
	sb.WriteString(r.Level.String())
	sb.WriteString(": ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, strings.Join(h.groups, "."), a)

		return true
	})

	sb.WriteString("\n")

	h.m.Lock()
	defer h.m.Unlock()

	if _, err := io.WriteString(h.w, sb.String()); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

func (h *FileHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}

	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))

	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, key, ga)
		}

		return
	}

	sb.WriteString(" ")
	sb.WriteString(key)
	sb.WriteString("=")

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if strings.ContainsAny(s, " \t\"=") || s == "" {
			s = fmt.Sprintf("%q", s)
		}

		sb.WriteString(s)
	case slog.KindTime:
		sb.WriteString(a.Value.Time().Format(time.RFC3339))
	default:
		sb.WriteString(a.Value.String())
	}
}
