// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

const (
	// DefaultFileName is the configuration file looked up in the working directory.
	DefaultFileName = "server.yml"

	hclExt = ".hcl"
	envVar = "env"
)

var (
	// ErrConfigNotFound is returned when a local configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrReadConfig is returned when the configuration file cannot be read.
	ErrReadConfig = errors.New("failed to read configuration file")
	// ErrEmptyConfig is returned when the configuration file has no content.
	ErrEmptyConfig = errors.New("configuration file is empty")
	// ErrInvalidYaml is returned when the YAML cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidHcl is returned when the HCL cannot be decoded.
	ErrInvalidHcl = errors.New("invalid HCL")
)

// hclConfig mirrors ServerConfig for gohcl, which needs its own tags and a
// remain body so unknown attributes are ignored like they are in YAML.
type hclConfig struct {
	RamMax               string   `hcl:"ram-max,optional"`
	RamMin               string   `hcl:"ram-min,optional"`
	ServerTarget         string   `hcl:"server-jar,optional"`
	UseOptions           bool     `hcl:"use-options,optional"`
	ManualStartupCommand string   `hcl:"manual-startup-command,optional"`
	Remain               hcl.Body `hcl:",remain"`
}

// IsRemote reports whether src should be fetched with go-getter rather than read from disk.
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Load reads the configuration from src, which is a local path or a go-getter URL.
// A missing local file returns ErrConfigNotFound.
func Load(ctx context.Context, src string) (*ServerConfig, error) {
	if IsRemote(src) {
		name, data, err := Fetch(ctx, src)
		if err != nil {
			return nil, err
		}

		return Parse(name, data)
	}

	fs := FsFactory()

	data, err := afero.ReadFile(fs, src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, src)
		}

		return nil, errors.Join(ErrReadConfig, err)
	}

	return Parse(src, data)
}

// Parse decodes data, choosing HCL for names ending in .hcl and YAML otherwise.
func Parse(name string, data []byte) (*ServerConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyConfig, name)
	}

	if strings.EqualFold(filepath.Ext(name), hclExt) {
		return parseHCL(name, data)
	}

	return parseYAML(data)
}

func parseYAML(data []byte) (*ServerConfig, error) {
	cfg := new(ServerConfig)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	return cfg, nil
}

func parseHCL(name string, data []byte) (*ServerConfig, error) {
	var hc hclConfig

	if err := hclsimple.Decode(filepath.Base(name), data, evalContext(), &hc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHcl, err)
	}

	return &ServerConfig{
		RamMax:               hc.RamMax,
		RamMin:               hc.RamMin,
		ServerTarget:         hc.ServerTarget,
		UseOptions:           hc.UseOptions,
		ManualStartupCommand: hc.ManualStartupCommand,
	}, nil
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			envVar: cty.ObjectVal(env),
		},
	}
}
