// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package command prints the startup command a configuration produces, without running it.
package command

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/matt-FFFFFF/anyjar/cmd/anyjar/run"
	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/matt-FFFFFF/anyjar/internal/launch"
	"github.com/urfave/cli/v3"
)

// CommandCmd shows the invocation and any validation findings for the configuration.
var CommandCmd = &cli.Command{
	Name:  "command",
	Usage: "Print the startup command the configuration produces",
	Description: `Load the configuration, validate it and print the command AnyJar would run.
Nothing is started. Useful to check quoting in manual-startup-command.`,
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	src := cmd.String(run.ConfigFlag)
	w := cmd.Root().Writer

	cfg, err := config.Load(ctx, src)
	if err != nil {
		logger.Error(fmt.Sprintf("Could not load the configuration from %s: %s", src, err.Error()))
		return cli.Exit("", 1)
	}

	dir, err := os.Getwd()
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit("", 1)
	}

	warnings, verr := config.Validate(config.FsFactory(), *cfg, dir, runtime.GOOS)

	inv := launch.Build(*cfg)

	fmt.Fprintf(w, "mode: %s\n", cfg.Mode()) //nolint:errcheck

	if cfg.UseOptions {
		fmt.Fprintf(w, "target: %s (%s)\n", cfg.ServerTarget, launch.Kind(cfg.ServerTarget)) //nolint:errcheck
	}

	fmt.Fprintf(w, "command: %s\n", inv) //nolint:errcheck

	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %v\n", warn) //nolint:errcheck
	}

	if verr != nil {
		fmt.Fprintf(w, "invalid: %v\n", verr) //nolint:errcheck
		return cli.Exit("", 1)
	}

	return nil
}
