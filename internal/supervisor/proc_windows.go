// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package supervisor

import (
	"os"
	"syscall"
)

// The child stays in the console's process group so that Ctrl+C reaches it directly.
func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Windows cannot deliver signals other than kill to another process.
func signalTree(ps *os.Process, sig os.Signal) error {
	return ps.Signal(sig)
}

func killTree(ps *os.Process) error {
	return ps.Kill()
}
