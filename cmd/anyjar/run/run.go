// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run starts the configured server under supervision. It is also the
// default action of the anyjar command.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/anyjar"
	"github.com/matt-FFFFFF/anyjar/internal/bootstrap"
	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/console"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/matt-FFFFFF/anyjar/internal/prompt"
	"github.com/matt-FFFFFF/anyjar/internal/signalbroker"
	"github.com/matt-FFFFFF/anyjar/internal/supervisor"
	"github.com/urfave/cli/v3"
)

const (
	// ConfigFlag selects the configuration source.
	ConfigFlag = "config"
	// NoPauseFlag skips the "Press Enter" pauses.
	NoPauseFlag = "no-pause"

	logDirFlag            = "log-dir"
	gracePeriodFlag       = "grace-period"
	stopTimeoutFlag       = "stop-timeout"
	propagateExitCodeFlag = "propagate-exit-code"
	configEnvVar          = "ANYJAR_CONFIG"
	noPauseEnvVar         = "ANYJAR_NO_PAUSE"
	cliExitStr            = ""
	firstRunMessage       = "Review the configuration, then press Enter to exit..."
)

// Flags returns the flags of the run action. The root command owns them and
// subcommands inherit them.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage: "Configuration file (.yml, .yaml or .hcl). " +
				"Supports Hashicorp's go-getter syntax for fetching remote files.",
			Value:     config.DefaultFileName,
			Sources:   cli.EnvVars(configEnvVar),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      logDirFlag,
			Usage:     "Directory for the log files",
			Value:     ctxlog.DefaultLogDir,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.DurationFlag{
			Name:  gracePeriodFlag,
			Usage: "How long to wait for output to drain after the server has stopped",
			Value: supervisor.DefaultGracePeriod,
		},
		&cli.DurationFlag{
			Name:  stopTimeoutFlag,
			Usage: "How long the server may take to stop after Ctrl+C before it is killed",
			Value: supervisor.DefaultStopTimeout,
		},
		&cli.BoolFlag{
			Name:        propagateExitCodeFlag,
			Usage:       "Exit with the server's exit code",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        NoPauseFlag,
			Usage:       "Do not wait for Enter before exiting after a problem or on first run",
			Value:       false,
			DefaultText: "false",
			Sources:     cli.EnvVars(noPauseEnvVar),
			OnlyOnce:    true,
		},
	}
}

// RunCmd starts the configured server.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "Start the configured server (the default action)",
	Description: `Start the server described by the configuration file and stay attached to it.
Its output is shown here and written to a log file, and whatever you type is sent to it.
Press Ctrl+C once to stop it gracefully, twice to kill it.

When the configuration file does not exist yet, a commented default is created instead.`,
	Action: Action,
}

// Action is the run action.
func Action(ctx context.Context, cmd *cli.Command) error {
	out, errOut, in := streams(cmd)
	src := cmd.String(ConfigFlag)

	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command", "config", src)

	needed, err := bootstrap.Needed(src)
	if err != nil {
		logger.Error(fmt.Sprintf("Could not check for configuration %s: %s", src, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if needed {
		if err := bootstrap.Run(ctx, out, src); err != nil {
			logger.Error(err.Error())
			return cli.Exit(cliExitStr, 1)
		}

		pause(ctx, cmd, in, out, firstRunMessage)

		return nil
	}

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	fileHandler, closeLog := openLog(ctx, cmd.String(logDirFlag))
	defer closeLog()

	diag := slog.New(ctxlog.NewFanout(ctxlog.Logger(ctx).Handler(), fileHandler)).With("run", uuid.NewString())
	ctx = ctxlog.New(ctx, diag)

	childLog := slog.New(slog.DiscardHandler)
	if fileHandler != nil {
		childLog = slog.New(fileHandler)
	}

	ctxlog.Info(ctx, "AnyJar started.", "version", anyjar.Version, "commit", anyjar.Commit)
	defer ctxlog.Info(ctx, "AnyJar finished.")

	cfg, err := config.Load(ctx, src)
	if err != nil {
		ctxlog.Error(ctx, "could not load configuration", "source", src, "error", err)
		fmt.Fprintf(errOut, "Could not load the configuration from %s: %v\n", src, err) //nolint:errcheck
		pause(ctx, cmd, in, out, prompt.ExitMessage)

		return cli.Exit(cliExitStr, 1)
	}

	sup := supervisor.New(*cfg,
		supervisor.WithConsole(console.New(out, errOut, console.WithAutoColour())),
		supervisor.WithChildLogger(childLog),
		supervisor.WithInput(in),
		supervisor.WithGracePeriod(cmd.Duration(gracePeriodFlag)),
		supervisor.WithStopTimeout(cmd.Duration(stopTimeoutFlag)),
		supervisor.WithSignals(sigCh),
	)

	res, err := sup.Run(ctx)

	switch {
	case errors.Is(err, supervisor.ErrInvalidConfig):
		fmt.Fprintf(errOut, "Fix %s and start AnyJar again.\n", src) //nolint:errcheck
		pause(ctx, cmd, in, out, prompt.ExitMessage)

		return nil
	case errors.Is(err, supervisor.ErrInterrupted):
		return cli.Exit(cliExitStr, 1)
	case err != nil:
		pause(ctx, cmd, in, out, prompt.ExitMessage)

		return cli.Exit(cliExitStr, 1)
	case ctx.Err() != nil:
		return cli.Exit(cliExitStr, 1)
	}

	if cmd.Bool(propagateExitCodeFlag) && res.ExitCode != 0 {
		return cli.Exit(cliExitStr, exitCode(res.ExitCode))
	}

	return nil
}

// exitCode maps a child exit code to a process exit status. Killed children report -1.
func exitCode(code int) int {
	if code < 0 {
		return 1
	}

	return code
}

// openLog opens the log file. When that fails the run continues with console logging only.
func openLog(ctx context.Context, dir string) (slog.Handler, func()) {
	f, err := ctxlog.OpenLogFile(config.FsFactory(), dir, time.Now())
	if err != nil {
		ctxlog.Warn(ctx, "could not open log file, logging to the console only", "error", err)

		return nil, func() {}
	}

	ctxlog.Debug(ctx, "logging to file", "path", f.Name())

	return ctxlog.NewFileHandler(f, nil), func() {
		_ = f.Sync()
		_ = f.Close()
	}
}

func pause(ctx context.Context, cmd *cli.Command, in io.Reader, out io.Writer, message string) {
	if cmd.Bool(NoPauseFlag) {
		return
	}

	if err := prompt.WaitForEnter(ctx, in, out, message); err != nil {
		ctxlog.Debug(ctx, "pause ended with error", "error", err)
	}
}

// streams returns the root command's writers and reader, falling back to the process's own.
func streams(cmd *cli.Command) (io.Writer, io.Writer, io.Reader) {
	root := cmd.Root()

	var (
		out    io.Writer = os.Stdout
		errOut io.Writer = os.Stderr
		in     io.Reader = os.Stdin
	)

	if root.Writer != nil {
		out = root.Writer
	}

	if root.ErrWriter != nil {
		errOut = root.ErrWriter
	}

	if root.Reader != nil {
		in = root.Reader
	}

	return out, errOut, in
}
