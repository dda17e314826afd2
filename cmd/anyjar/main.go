// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the anyjar command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/anyjar"
	"github.com/matt-FFFFFF/anyjar/cmd/anyjar/command"
	"github.com/matt-FFFFFF/anyjar/cmd/anyjar/initconfig"
	"github.com/matt-FFFFFF/anyjar/cmd/anyjar/run"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/matt-FFFFFF/anyjar/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		initconfig.InitCmd,
		command.CommandCmd,
	},
	Flags:     run.Flags(),
	Action:    run.Action,
	Reader:    os.Stdin,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "anyjar",
	Description: `AnyJar starts a server from a small configuration file and stays attached to it.
It builds the start command from the file type (java for .jar, bash for .sh, cmd for .bat and .cmd),
relays the server's output to the terminal and a log file, passes your typed commands to the server,
and asks jar servers to "stop" cleanly when you press Ctrl+C.`,
	Usage:     "anyjar [--config server.yml]",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", anyjar.Version, anyjar.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
