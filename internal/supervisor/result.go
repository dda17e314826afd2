// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import "github.com/matt-FFFFFF/anyjar/internal/launch"

// Result describes a finished run.
type Result struct {
	Invocation launch.Invocation // Command that was, or would have been, started.
	Pid        int               // Process id of the child, 0 when it was never spawned.
	Spawned    bool              // The child process was created.
	ExitCode   int               // Exit code of the child, -1 when it never spawned or was killed by a signal.
	StopSent   bool              // The cooperative stop command was sent.
	Forced     bool              // The child was killed.
	State      State             // Last state reached, Terminated after Run returns.
}
