// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package forwarder passes the operator's input lines to the child's standard input.
package forwarder

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
)

var (
	// ErrRead is returned when operator input fails with anything other than EOF.
	ErrRead = errors.New("error reading operator input")
	// ErrWrite is returned when a line cannot be written to the child.
	ErrWrite = errors.New("error writing to child input")
)

type flusher interface {
	Flush() error
}

// Run writes every line read from in to out as line + "\n", flushing after each line when
// out has a Flush method.
//
// Run returns nil when in reaches EOF, when ctx is done or when out has been closed by
// the child or the supervisor. It does not close out. When ctx is done while a read from
// in is blocked, that read is abandoned.
func Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go readLines(in, lines, readErr, ctx.Done())

	for {
		select {
		case <-ctx.Done():
			ctxlog.Debug(ctx, "forwarder cancelled")

			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return errors.Join(ErrRead, err)
				}

				ctxlog.Debug(ctx, "operator input closed")

				return nil
			}

			if err := writeLine(out, line); err != nil {
				if IsClosed(err) {
					ctxlog.Debug(ctx, "child input closed", "error", err)

					return nil
				}

				return errors.Join(ErrWrite, err)
			}
		}
	}
}

func readLines(in io.Reader, lines chan<- string, readErr chan<- error, done <-chan struct{}) {
	defer close(lines)

	br := bufio.NewReader(in)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			select {
			case lines <- strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"):
			case <-done:
				readErr <- nil

				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}

			readErr <- err

			return
		}
	}
}

func writeLine(out io.Writer, line string) error {
	if _, err := io.WriteString(out, line+"\n"); err != nil {
		return err
	}

	if f, ok := out.(flusher); ok {
		return f.Flush()
	}

	return nil
}

// IsClosed reports whether err means the other side of a pipe is gone.
func IsClosed(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		isPlatformClosed(err)
}
