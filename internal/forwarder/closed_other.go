// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package forwarder

func isPlatformClosed(error) bool {
	return false
}
