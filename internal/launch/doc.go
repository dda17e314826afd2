// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package launch turns a server configuration into the invocation used to start the child process.
//
// In derived mode the target file's extension picks the launcher: java for jars,
// bash for shell scripts, cmd for batch files, and direct execution for everything else.
// In manual mode the operator's command line is split into arguments by Tokenize.
//
// Everything in this package is pure: no file system access and no process state.
package launch
