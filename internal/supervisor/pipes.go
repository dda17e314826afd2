// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"errors"
	"os"
	"sync"
)

// pipes holds both ends of the child's three standard streams.
// The child ends are handed to the process at start and closed in the parent right after.
type pipes struct {
	stdinR, stdinW   *os.File
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File
}

func newPipes() (*pipes, error) {
	p := &pipes{}

	var err error

	if p.stdinR, p.stdinW, err = os.Pipe(); err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	if p.stdoutR, p.stdoutW, err = os.Pipe(); err != nil {
		p.closeAll()

		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	if p.stderrR, p.stderrW, err = os.Pipe(); err != nil {
		p.closeAll()

		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	return p, nil
}

// childFiles returns stdin, stdout and stderr for os.ProcAttr.
func (p *pipes) childFiles() []*os.File {
	return []*os.File{p.stdinR, p.stdoutW, p.stderrW}
}

func (p *pipes) closeChildEnds() {
	closeFiles(p.stdinR, p.stdoutW, p.stderrW)
}

// closeReaders unblocks relays still reading after the grace period.
func (p *pipes) closeReaders() {
	closeFiles(p.stdoutR, p.stderrR)
}

func (p *pipes) closeAll() {
	closeFiles(p.stdinR, p.stdinW, p.stdoutR, p.stdoutW, p.stderrR, p.stderrW)
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// stdinWriter serialises writes to the child's stdin between the forwarder and the
// shutdown coordinator. Close does not take the lock so it can release a blocked write.
type stdinWriter struct {
	m sync.Mutex
	f *os.File
}

func (w *stdinWriter) Write(p []byte) (int, error) {
	w.m.Lock()
	defer w.m.Unlock()

	return w.f.Write(p) //nolint:wrapcheck
}

func (w *stdinWriter) Close() error {
	return w.f.Close() //nolint:wrapcheck
}
