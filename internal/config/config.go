// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import "fmt"

// ServerConfig is the launcher configuration.
// The yaml and hcl tags are the external, human-friendly key names.
type ServerConfig struct {
	// Maximum heap size passed to java as -Xmx, e.g. "2G". Derived mode only.
	RamMax string `yaml:"ram-max"`
	// Initial heap size passed to java as -Xms. Derived mode only.
	RamMin string `yaml:"ram-min"`
	// Path of the jar, script or executable to start. Derived mode only.
	ServerTarget string `yaml:"server-jar"`
	// Selects derived mode (true) or manual mode (false).
	UseOptions bool `yaml:"use-options"`
	// Raw command line used in manual mode.
	ManualStartupCommand string `yaml:"manual-startup-command"`
}

// String implements the Stringer interface for ServerConfig.
func (c ServerConfig) String() string {
	return fmt.Sprintf(
		"ServerConfig{ramMax=%q, ramMin=%q, serverJar=%q, useOptions=%t, manualStartupCommand=%q}",
		c.RamMax, c.RamMin, c.ServerTarget, c.UseOptions, c.ManualStartupCommand,
	)
}

// Mode returns "derived" or "manual" depending on UseOptions.
func (c ServerConfig) Mode() string {
	if c.UseOptions {
		return "derived"
	}

	return "manual"
}
