// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// GOOSWindows is the runtime.GOOS value for Windows.
const GOOSWindows = "windows"

var (
	// ErrTargetNotFound is returned when the derived-mode target file does not exist.
	ErrTargetNotFound = errors.New("target file not found")
	// ErrTargetIsDirectory is returned when the derived-mode target is a directory.
	ErrTargetIsDirectory = errors.New("target is a directory")
	// ErrEmptyManualCommand is returned when manual mode has no command to run.
	ErrEmptyManualCommand = errors.New("manual startup command is empty")
	// ErrTargetNotExecutable is a warning: the target lacks execute permission.
	ErrTargetNotExecutable = errors.New("target file is not executable")
	// ErrInvalidMemorySize is a warning: a ram value does not look like a JVM memory size.
	ErrInvalidMemorySize = errors.New("invalid memory size")
)

var memorySize = regexp.MustCompile(`^[0-9]+[kKmMgGtT]?$`)

// Validate checks the active mode of cfg. Relative targets are resolved against dir.
//
// The returned error aggregates every problem that prevents a start, and is nil
// when the configuration can be launched. Warnings never prevent a start.
// Fields of the inactive mode are not inspected.
func Validate(fs afero.Fs, cfg ServerConfig, dir, goos string) (warnings []error, err error) {
	var result *multierror.Error

	if !cfg.UseOptions {
		if strings.TrimSpace(cfg.ManualStartupCommand) == "" {
			result = multierror.Append(result, ErrEmptyManualCommand)
		}

		return nil, result.ErrorOrNil()
	}

	if strings.HasSuffix(strings.ToLower(cfg.ServerTarget), ".jar") {
		for _, kv := range [][2]string{{"ram-max", cfg.RamMax}, {"ram-min", cfg.RamMin}} {
			if !memorySize.MatchString(kv[1]) {
				warnings = append(warnings, fmt.Errorf("%w: %s=%q", ErrInvalidMemorySize, kv[0], kv[1]))
			}
		}
	}

	target := TargetPath(cfg, dir)

	info, statErr := fs.Stat(target)

	switch {
	case cfg.ServerTarget == "":
		result = multierror.Append(result, fmt.Errorf("%w: server-jar is not set", ErrTargetNotFound))
	case errors.Is(statErr, os.ErrNotExist):
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrTargetNotFound, cfg.ServerTarget))
	case statErr != nil:
		result = multierror.Append(result, fmt.Errorf("could not inspect %s: %w", cfg.ServerTarget, statErr))
	case info.IsDir():
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrTargetIsDirectory, cfg.ServerTarget))
	case goos != GOOSWindows && info.Mode().Perm()&0o111 == 0:
		warnings = append(warnings, fmt.Errorf("%w: %s", ErrTargetNotExecutable, cfg.ServerTarget))
	}

	return warnings, result.ErrorOrNil()
}

// TargetPath resolves the derived-mode target against dir.
func TargetPath(cfg ServerConfig, dir string) string {
	if filepath.IsAbs(cfg.ServerTarget) || dir == "" {
		return cfg.ServerTarget
	}

	return filepath.Join(dir, cfg.ServerTarget)
}
