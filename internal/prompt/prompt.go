// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package prompt pauses until the operator presses Enter, so that messages stay
// readable when the launcher was started by double-clicking it.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ExitMessage is the default pause prompt.
const ExitMessage = "Press Enter to exit..."

// isTerminal allows the terminal check to be stubbed in tests.
var isTerminal = term.IsTerminal

// WaitForEnter shows message and waits for a line on in.
// On a terminal the line is read with liner, which also ends the wait on Ctrl+C.
// Otherwise message is written to out and any line, or EOF, ends the wait.
// It returns early with nil when ctx is done.
func WaitForEnter(ctx context.Context, in io.Reader, out io.Writer, message string) error {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		return waitLiner(ctx, message)
	}

	if _, err := fmt.Fprintln(out, message); err != nil {
		return err //nolint:wrapcheck
	}

	done := make(chan error, 1)

	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}

		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func waitLiner(ctx context.Context, message string) error {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	done := make(chan error, 1)

	go func() {
		_, err := line.Prompt(message + " ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			err = nil
		}

		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}
