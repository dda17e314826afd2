// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shutdown

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stdinRecorder struct {
	bytes.Buffer
	closed   int
	writeErr error
	closeErr error
}

func (s *stdinRecorder) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}

	return s.Buffer.Write(p)
}

func (s *stdinRecorder) Close() error {
	s.closed++

	return s.closeErr
}

func TestShutdown_Decision(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ServerConfig
		wantSent bool
	}{
		{name: "derived jar", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "app.jar"}, wantSent: true},
		{name: "derived jar upper case", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "servers/Paper.JAR"}, wantSent: true},
		{name: "derived shell script", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "start.sh"}},
		{name: "derived batch", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "start.bat"}},
		{name: "derived cmd", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "start.cmd"}},
		{name: "derived exe", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "bedrock_server.exe"}},
		{name: "derived no extension", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "server"}},
		{name: "manual jar command", cfg: config.ServerConfig{ServerTarget: "app.jar", ManualStartupCommand: "java -jar app.jar"}},
		{name: "jar in directory name only", cfg: config.ServerConfig{UseOptions: true, ServerTarget: "app.jar/run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdin := &stdinRecorder{}
			c := New(tt.cfg)

			assert.Equal(t, tt.wantSent, c.Cooperative())
			assert.Equal(t, tt.wantSent, c.Shutdown(context.Background(), stdin))

			if tt.wantSent {
				assert.Equal(t, StopCommand, stdin.String())
				assert.Equal(t, 1, stdin.closed)

				return
			}

			assert.Empty(t, stdin.String())
			assert.Zero(t, stdin.closed)
		})
	}
}

func TestShutdown_RunsOnce(t *testing.T) {
	stdin := &stdinRecorder{}
	c := New(config.ServerConfig{UseOptions: true, ServerTarget: "app.jar"})

	var wg sync.WaitGroup

	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.True(t, c.Shutdown(context.Background(), stdin))
		}()
	}

	wg.Wait()

	assert.Equal(t, "stop\n", stdin.String())
	assert.Equal(t, 1, stdin.closed)
}

func TestShutdown_FailuresSwallowed(t *testing.T) {
	stdin := &stdinRecorder{writeErr: os.ErrClosed, closeErr: errors.New("already closed")}
	c := New(config.ServerConfig{UseOptions: true, ServerTarget: "app.jar"})

	assert.True(t, c.Shutdown(context.Background(), stdin))
	assert.Equal(t, 1, stdin.closed)
}
