// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colours the supervisor's own console output: the `[AnyJar] `
// prefix in front of relayed child lines and the levels of diagnostic log records.
//
// Colour is enabled when NO_COLOR is unset and either FORCE_COLOR is set or
// standard output is a terminal (detected with golang.org/x/term).
// Child output itself is never recoloured.
package color
