// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor runs exactly one child process for the launcher.
//
// A run moves through the states Idle, Validating, Spawned, Running, Draining and
// Terminated. While the child is running three tasks bridge its standard streams:
// two relays copy stdout and stderr to the log and the console, and a forwarder
// passes operator input to stdin.
//
// The first termination signal starts a graceful stop. Jar targets get the "stop"
// command on stdin; anything else gets the signal forwarded to its process group.
// The child is killed when it has not exited within the stop timeout, when a second
// signal of the same type arrives or when the context is cancelled.
package supervisor
