// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

// State is a step in the life of a supervised run.
type State int

const (
	// Idle is the state before Run is called.
	Idle State = iota
	// Validating checks the configuration before anything is started.
	Validating
	// Spawned means the child process exists but its streams are not yet bridged.
	Spawned
	// Running means the relays and the forwarder are active.
	Running
	// Draining tears the tasks down after exit or a termination request.
	Draining
	// Terminated is final. The child, if it was ever started, has been reaped.
	Terminated
)

// String returns the lower case state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Spawned:
		return "spawned"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}
