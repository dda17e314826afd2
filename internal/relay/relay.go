// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package relay copies a child's output stream to its sinks one line at a time.
package relay

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrRead is returned when the source stream fails with anything other than EOF.
var ErrRead = errors.New("error reading child output")

// Sink receives one line without its line terminator.
type Sink func(line string)

// Run reads lines from r until EOF and passes each line to every sink in argument order
// before reading the next one. A trailing "\r" is removed and a final line without a
// terminator is still delivered. Lines are not length limited.
//
// Run returns nil at EOF, or when ctx is done before the next read starts. A read that
// is already blocked is not interrupted by ctx; the owner of r unblocks it by closing r.
func Run(ctx context.Context, r io.Reader, sinks ...Sink) error {
	br := bufio.NewReader(r)

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			emit(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), sinks)
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			return errors.Join(ErrRead, err)
		}
	}
}

func emit(line string, sinks []Sink) {
	for _, s := range sinks {
		if s != nil {
			s(line)
		}
	}
}
