// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package console is the terminal sink: relayed child output is echoed with a
// fixed prefix and operator notices are printed as they are.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/matt-FFFFFF/anyjar/internal/color"
)

// Prefix marks every relayed child line on the terminal.
const Prefix = "[AnyJar] "

// Console writes lines to an output and an error writer. It is safe for concurrent use.
type Console struct {
	out    io.Writer
	errOut io.Writer
	m      sync.Mutex
	colour bool
}

// Option configures a Console.
type Option func(c *Console)

// WithColour colours the prefix.
func WithColour() Option {
	return func(c *Console) {
		c.colour = true
	}
}

// WithAutoColour colours the prefix when the terminal supports it.
func WithAutoColour() Option {
	return func(c *Console) {
		c.colour = color.Enabled()
	}
}

// New returns a Console writing standard lines to out and error lines to errOut.
func New(out, errOut io.Writer, opts ...Option) *Console {
	c := &Console{
		out:    out,
		errOut: errOut,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Stdout prints a line the child wrote to its standard output.
func (c *Console) Stdout(line string) {
	c.write(c.out, color.Paint(c.colour, Prefix, color.FgGreen)+line)
}

// Stderr prints a line the child wrote to its standard error.
func (c *Console) Stderr(line string) {
	c.write(c.errOut, color.Paint(c.colour, Prefix, color.FgRed)+line)
}

// Notice prints an operator-facing message to the output writer.
func (c *Console) Notice(format string, args ...any) {
	c.write(c.out, fmt.Sprintf(format, args...))
}

// Warning prints an operator-facing message to the error writer.
func (c *Console) Warning(format string, args ...any) {
	c.write(c.errOut, color.Paint(c.colour, fmt.Sprintf(format, args...), color.FgYellow))
}

func (c *Console) write(w io.Writer, s string) {
	c.m.Lock()
	defer c.m.Unlock()

	_, _ = io.WriteString(w, s+"\n")
}
