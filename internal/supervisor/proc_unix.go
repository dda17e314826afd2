// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package supervisor

import (
	"errors"
	"os"
	"syscall"
)

// The child leads its own process group so that a terminal interrupt reaches the
// supervisor only, and signals and kills can address the whole tree.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func signalTree(ps *os.Process, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return ps.Signal(sig)
	}

	if err := syscall.Kill(-ps.Pid, s); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}

		return ps.Signal(sig)
	}

	return nil
}

func killTree(ps *os.Process) error {
	if err := syscall.Kill(-ps.Pid, syscall.SIGKILL); err == nil {
		return nil
	}

	return ps.Kill()
}
