// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package shutdown

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_BoundedByContext(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close()

	// fill the pipe so the stop write blocks
	require.NoError(t, w.SetWriteDeadline(time.Now().Add(200*time.Millisecond)))

	for {
		if _, err := w.Write(bytes.Repeat([]byte("x"), 4096)); err != nil {
			break
		}
	}

	require.NoError(t, w.SetWriteDeadline(time.Time{}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	c := New(config.ServerConfig{UseOptions: true, ServerTarget: "app.jar"})

	assert.True(t, c.Shutdown(ctx, w))
	assert.Less(t, time.Since(start), time.Second)

	_, err = w.Write([]byte("x"))
	require.ErrorIs(t, err, os.ErrClosed)

	_, _ = io.Copy(io.Discard, r)
}
