// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	sixFourFour   = 0o644
	sevenFiveFive = 0o755
)

// ErrConfigExists is returned by WriteDefault when the file is already present and force is not set.
var ErrConfigExists = errors.New("configuration file already exists")

// defaultTemplate is the commented configuration written on first run.
// Its values must match DefaultConfig.
const defaultTemplate = `# AnyJar configuration.
# This file tells AnyJar how to start your server. Edit it, save it, and run AnyJar again.

# ram-max: the most memory the server may use (passed to java as -Xmx).
# This cannot give the server more memory than the machine actually has.
ram-max: 1G

# ram-min: the memory the server starts with (passed to java as -Xms).
ram-min: 1G

# server-jar: the file to start. Use a path relative to this folder, or an absolute path.
# It can be a .jar, .sh, .bat, .cmd, .exe or any other executable file.
server-jar: actual-server.jar

# use-options: true lets AnyJar build the start command from the settings above,
# picking java, bash or cmd from the file extension.
# Set it to false to use manual-startup-command below instead.
use-options: true

# manual-startup-command: the exact command to run when use-options is false.
# Wrap arguments containing spaces in quotes.
# Examples:
#   java -Xmx2G -Xms1G -jar my_server.jar nogui
#   bash startup.sh
#   python server.py
manual-startup-command: java -jar actual-server.jar nogui
`

// DefaultConfig returns the configuration written by WriteDefault.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		RamMax:               "1G",
		RamMin:               "1G",
		ServerTarget:         "actual-server.jar",
		UseOptions:           true,
		ManualStartupCommand: "java -jar actual-server.jar nogui",
	}
}

// Exists reports whether a local configuration file is present at path.
func Exists(path string) (bool, error) {
	ok, err := afero.Exists(FsFactory(), path)
	if err != nil {
		return false, errors.Join(ErrReadConfig, err)
	}

	return ok, nil
}

// WriteDefault writes the commented default configuration to path.
// An existing file is only replaced when force is true.
func WriteDefault(path string, force bool) error {
	fs := FsFactory()

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return errors.Join(ErrReadConfig, err)
	}

	if exists && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, sevenFiveFive); err != nil {
			return fmt.Errorf("could not create directory for %s: %w", path, err)
		}
	}

	if err := afero.WriteFile(fs, path, []byte(defaultTemplate), sixFourFour); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	return nil
}
