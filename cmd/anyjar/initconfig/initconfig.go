// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package initconfig writes the commented default configuration file.
package initconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/anyjar/cmd/anyjar/run"
	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const forceFlag = "force"

// InitCmd writes the default configuration to the path given by --config.
var InitCmd = &cli.Command{
	Name:  "init",
	Usage: "Write the default configuration file",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:        forceFlag,
			Aliases:     []string{"f"},
			Usage:       "Overwrite an existing configuration file",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	path := cmd.String(run.ConfigFlag)

	if config.IsRemote(path) {
		logger.Error(fmt.Sprintf("Cannot write a configuration to remote source %s. Use a local path.", path))
		return cli.Exit("", 1)
	}

	if err := config.WriteDefault(path, cmd.Bool(forceFlag)); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			logger.Error(fmt.Sprintf("%s already exists. Use --%s to overwrite it.", path, forceFlag))
			return cli.Exit("", 1)
		}

		logger.Error(err.Error())

		return cli.Exit("", 1)
	}

	fmt.Fprintf(cmd.Root().Writer, "Wrote default configuration to %s\n", path) //nolint:errcheck

	return nil
}
