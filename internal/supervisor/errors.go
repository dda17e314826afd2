// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import "errors"

var (
	// ErrInvalidConfig is returned when validation fails. Nothing is started.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEmptyInvocation is returned when the configuration produces no program to run.
	ErrEmptyInvocation = errors.New("startup command is empty")
	// ErrInterrupted is returned when a termination signal arrived before the child was started.
	ErrInterrupted = errors.New("termination requested before start")
	// ErrCouldNotStartProcess is returned when the operating system cannot create the child.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrTaskPanic wraps a panic recovered from a relay or forwarder task.
	ErrTaskPanic = errors.New("task panicked")
)
