// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package launch

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/anyjar/internal/config"
)

const (
	javaExe  = "java"
	bashExe  = "bash"
	cmdExe   = "cmd"
	cmdFlag  = "/c"
	jarFlag  = "-jar"
	noGUIArg = "nogui"
	xmxFlag  = "-Xmx"
	xmsFlag  = "-Xms"
)

// Invocation is a program followed by its arguments.
type Invocation []string

// Program returns the executable name, or an empty string for an empty invocation.
func (i Invocation) Program() string {
	if len(i) == 0 {
		return ""
	}

	return i[0]
}

// Args returns the arguments after the program name.
func (i Invocation) Args() []string {
	if len(i) < 2 { //nolint:mnd
		return nil
	}

	return slices.Clone(i[1:])
}

// String renders the invocation as a bracketed, comma separated list for logging.
func (i Invocation) String() string {
	return "[" + strings.Join(i, ", ") + "]"
}

// TargetKind classifies a derived-mode target by its file extension.
type TargetKind int

const (
	// KindOther is any target that is executed directly, including targets without an extension.
	KindOther TargetKind = iota
	// KindJar is a Java archive started with java -jar.
	KindJar
	// KindShell is a shell script started with bash.
	KindShell
	// KindBatch is a Windows batch file started with cmd /c.
	KindBatch
	// KindExe is a Windows executable started directly.
	KindExe
)

// String implements the Stringer interface for TargetKind.
func (k TargetKind) String() string {
	switch k {
	case KindJar:
		return "jar"
	case KindShell:
		return "shell"
	case KindBatch:
		return "batch"
	case KindExe:
		return "exe"
	default:
		return "other"
	}
}

// Kind classifies target by extension, ignoring case.
func Kind(target string) TargetKind {
	name := strings.ToLower(filepath.Base(target))

	switch {
	case strings.HasSuffix(name, ".jar"):
		return KindJar
	case strings.HasSuffix(name, ".sh"):
		return KindShell
	case strings.HasSuffix(name, ".bat"), strings.HasSuffix(name, ".cmd"):
		return KindBatch
	case strings.HasSuffix(name, ".exe"):
		return KindExe
	default:
		return KindOther
	}
}

// Build returns the invocation for cfg.
// In manual mode the command line must already have been checked to be non-empty.
func Build(cfg config.ServerConfig) Invocation {
	if !cfg.UseOptions {
		return Tokenize(cfg.ManualStartupCommand)
	}

	target := cfg.ServerTarget

	switch Kind(target) {
	case KindJar:
		return Invocation{javaExe, xmxFlag + cfg.RamMax, xmsFlag + cfg.RamMin, jarFlag, target, noGUIArg}
	case KindShell:
		return Invocation{bashExe, target}
	case KindBatch:
		return Invocation{cmdExe, cmdFlag, target}
	default:
		return Invocation{target}
	}
}
