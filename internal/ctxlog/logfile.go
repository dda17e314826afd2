// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const (
	// DefaultLogDir is where log files are created when no directory is configured.
	DefaultLogDir = "Anyjar/logs"

	logFilePrefix     = "Anyjar-log-"
	logFileTimeFormat = "2006-01-02_15-04-05"
	logFileExt        = ".txt"
	logDirPerm        = 0o755
)

// ErrOpenLogFile is returned when the log directory or file cannot be created.
var ErrOpenLogFile = errors.New("could not open log file")

// LogFileName returns the log file name for a run started at now.
func LogFileName(now time.Time) string {
	return logFilePrefix + now.Format(logFileTimeFormat) + logFileExt
}

// OpenLogFile creates dir if required and a new log file inside it named after now.
// An empty dir selects DefaultLogDir.
func OpenLogFile(fs afero.Fs, dir string, now time.Time) (afero.File, error) {
	if dir == "" {
		dir = DefaultLogDir
	}

	if err := fs.MkdirAll(dir, logDirPerm); err != nil {
		return nil, errors.Join(ErrOpenLogFile, err)
	}

	f, err := fs.Create(filepath.Join(dir, LogFileName(now)))
	if err != nil {
		return nil, errors.Join(ErrOpenLogFile, err)
	}

	return f, nil
}
