// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads, validates and bootstraps the AnyJar server configuration.
//
// The configuration is normally a `server.yml` file next to the launcher, using
// hyphenated keys such as `ram-max` and `server-jar`. The same keys are accepted in
// an HCL file (any path ending in `.hcl`), where values may reference environment
// variables through the `env` object, e.g. `server-jar = "${env.SERVER_HOME}/paper.jar"`.
// Remote configuration files can be fetched using Hashicorp's go-getter syntax.
//
// All local file access goes through FsFactory so tests can substitute an in-memory file system.
package config
