// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package bootstrap handles the first run, when there is no configuration yet:
// it writes the commented default file and greets the operator.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
)

const panelWidth = 72

// ErrBootstrap is returned when the default configuration cannot be written.
var ErrBootstrap = errors.New("could not create default configuration")

// Needed reports whether src is a local configuration that does not exist yet.
// Remote sources never need bootstrapping.
func Needed(src string) (bool, error) {
	if config.IsRemote(src) {
		return false, nil
	}

	ok, err := config.Exists(src)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	return !ok, nil
}

// Run writes the default configuration to path and prints the welcome panel to w.
func Run(ctx context.Context, w io.Writer, path string) error {
	if err := config.WriteDefault(path, false); err != nil {
		return errors.Join(ErrBootstrap, err)
	}

	ctxlog.Info(ctx, "created default configuration", "path", path)

	if _, err := fmt.Fprintln(w, Welcome(w, path)); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

// Welcome renders the first-run panel for the configuration at path, styled for w.
func Welcome(w io.Writer, path string) string {
	r := lipgloss.NewRenderer(w)

	title := r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	key := r.NewStyle().
		Foreground(lipgloss.Color("11"))
	help := r.NewStyle().
		Foreground(lipgloss.Color("8")).
		MarginTop(1)
	panel := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1, 2). //nolint:mnd
		Width(panelWidth)

	def := config.DefaultConfig()
	settings := []string{
		key.Render("ram-max") + ": " + def.RamMax,
		key.Render("ram-min") + ": " + def.RamMin,
		key.Render("server-jar") + ": " + def.ServerTarget,
		key.Render("use-options") + ": " + fmt.Sprint(def.UseOptions),
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title.Render("Welcome to AnyJar!"),
		"A default configuration has been created at:",
		"  "+filepath.Clean(path),
		"",
		strings.Join(settings, "\n"),
		help.Render("Set server-jar to the file you want to run, then start AnyJar again."),
	)

	return panel.Render(body)
}
