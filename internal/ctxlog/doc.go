// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware slog logger for the launcher.
//
// Diagnostics are written to the console by PrettyHandler and, once the log file
// is open, also to the file through FileHandler; NewFanout combines the two.
// Relayed child output is logged with a file-only logger so that it reaches the
// console exactly once, through the console sink.
//
// The console level comes from the ANYJAR_LOG_LEVEL environment variable
// (DEBUG, INFO, WARN or ERROR, default WARN). The file always records every level.
package ctxlog
