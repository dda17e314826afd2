// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package supervisor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/anyjar/internal/config"
	"github.com/matt-FFFFFF/anyjar/internal/console"
	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"github.com/matt-FFFFFF/anyjar/internal/launch"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeJava = `#!/bin/sh
echo "args: $*"
echo "Server started"
while read line; do
  echo "received: $line"
  if [ "$line" = "stop" ]; then
    echo "stopping"
    exit 0
  fi
done
exit 9
`

type lockedBuffer struct {
	m sync.Mutex
	b bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.m.Lock()
	defer l.m.Unlock()

	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.m.Lock()
	defer l.m.Unlock()

	return l.b.String()
}

type harness struct {
	sup    *Supervisor
	out    *lockedBuffer
	errOut *lockedBuffer
	log    *lockedBuffer
	sigCh  chan os.Signal
	states []State
}

func newHarness(t *testing.T, cfg config.ServerConfig, dir string, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		out:    &lockedBuffer{},
		errOut: &lockedBuffer{},
		log:    &lockedBuffer{},
		sigCh:  make(chan os.Signal, 2),
	}

	base := []Option{
		WithDir(dir),
		WithFs(afero.NewOsFs()),
		WithInput(strings.NewReader("")),
		WithConsole(console.New(h.out, h.errOut)),
		WithChildLogger(slog.New(ctxlog.NewFileHandler(h.log, nil))),
		WithStateHook(func(s State) { h.states = append(h.states, s) }),
		WithSignals(h.sigCh),
	}

	h.sup = New(cfg, append(base, opts...)...)

	return h
}

func quietCtx(t *testing.T) context.Context {
	t.Helper()

	return ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755))
}

func manual(cmd string) config.ServerConfig {
	return config.ServerConfig{ManualStartupCommand: cmd}
}

var fullRun = []State{Idle, Validating, Spawned, Running, Draining, Terminated}

func TestRun_JarCooperativeStop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.jar"), []byte("PK"), 0o644))

	bin := t.TempDir()
	writeScript(t, bin, "java", fakeJava)
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	cfg := config.ServerConfig{RamMax: "1G", RamMin: "1G", ServerTarget: "app.jar", UseOptions: true}
	h := newHarness(t, cfg, dir)

	go func() {
		if assert.Eventually(t, func() bool { return strings.Contains(h.out.String(), "Server started") }, 5*time.Second, 10*time.Millisecond) {
			h.sigCh <- os.Interrupt
		}
	}()

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)

	assert.Equal(t, launch.Invocation{"java", "-Xmx1G", "-Xms1G", "-jar", "app.jar", "nogui"}, res.Invocation)
	assert.True(t, res.Spawned)
	assert.True(t, res.StopSent)
	assert.False(t, res.Forced)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, Terminated, res.State)
	assert.Equal(t, fullRun, h.states)

	assert.Equal(t, 1, strings.Count(h.log.String(), "INFO: Server started\n"))
	assert.Equal(t, 1, strings.Count(h.out.String(), console.Prefix+"Server started\n"))
	assert.Contains(t, h.out.String(), console.Prefix+"args: -Xmx1G -Xms1G -jar app.jar nogui\n")
	assert.Contains(t, h.out.String(), console.Prefix+"received: stop\n")
	assert.Contains(t, h.log.String(), "INFO: stopping\n")
}

func TestRun_StreamsAndExitCode(t *testing.T) {
	h := newHarness(t, manual(`sh -c "echo out; echo err 1>&2; exit 3"`), t.TempDir())

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.StopSent)
	assert.Equal(t, fullRun, h.states)
	assert.Equal(t, console.Prefix+"out\n", h.out.String())
	assert.Equal(t, console.Prefix+"err\n", h.errOut.String())
	assert.Contains(t, h.log.String(), "INFO: out\n")
	assert.Contains(t, h.log.String(), "ERROR: err\n")
}

func TestRun_PerStreamOrder(t *testing.T) {
	h := newHarness(t, manual(`sh -c "for i in 1 2 3 4 5 6 7 8 9; do echo $i; done"`), t.TempDir())

	_, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)

	want := ""
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"} {
		want += console.Prefix + n + "\n"
	}

	assert.Equal(t, want, h.out.String())
}

func TestRun_ForwardsOperatorInput(t *testing.T) {
	h := newHarness(t, manual(`sh -c 'read l; echo "got $l"'`), t.TempDir(), WithInput(strings.NewReader("hello\n")))

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, h.out.String(), console.Prefix+"got hello\n")
}

func TestRun_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ServerConfig
		wantErr error
		notice  string
	}{
		{
			name:    "empty manual command",
			cfg:     manual(""),
			wantErr: config.ErrEmptyManualCommand,
			notice:  "manual-startup-command is empty",
		},
		{
			name:    "blank manual command",
			cfg:     manual("   "),
			wantErr: config.ErrEmptyManualCommand,
			notice:  "manual-startup-command is empty",
		},
		{
			name:    "missing jar",
			cfg:     config.ServerConfig{RamMax: "1G", RamMin: "1G", ServerTarget: "missing.jar", UseOptions: true},
			wantErr: config.ErrTargetNotFound,
			notice:  `"missing.jar"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.cfg, t.TempDir())

			res, err := h.sup.Run(quietCtx(t))
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.ErrorIs(t, err, tt.wantErr)

			assert.False(t, res.Spawned)
			assert.Equal(t, -1, res.ExitCode)
			assert.Equal(t, []State{Idle, Validating, Terminated}, h.states)
			assert.Contains(t, h.errOut.String(), tt.notice)
			assert.Empty(t, h.out.String())
		})
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	h := newHarness(t, manual("/not/a/real/command --flag"), t.TempDir())

	res, err := h.sup.Run(quietCtx(t))
	require.ErrorIs(t, err, ErrCouldNotStartProcess)

	var pathErr *os.PathError

	require.ErrorAs(t, err, &pathErr)
	assert.False(t, res.Spawned)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, []State{Idle, Validating, Terminated}, h.states)
}

func TestRun_UnknownProgram(t *testing.T) {
	h := newHarness(t, manual("anyjar-no-such-program-xyz"), t.TempDir())

	_, err := h.sup.Run(quietCtx(t))
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestRun_TargetInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "server", "#!/bin/sh\necho \"local ok in $(pwd)\"\n")

	h := newHarness(t, config.ServerConfig{ServerTarget: "server", UseOptions: true}, dir)

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	assert.Equal(t, launch.Invocation{"server"}, res.Invocation)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, h.out.String(), "local ok in ")
	assert.True(t,
		strings.Contains(h.out.String(), dir) || strings.Contains(h.out.String(), resolved),
		"child must run in the supervisor's working directory")
}

func TestRun_NotExecutableWarning(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "start.sh"), []byte("echo from script\n"), 0o644))

	h := newHarness(t, config.ServerConfig{ServerTarget: "start.sh", UseOptions: true}, dir)

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)
	assert.Equal(t, launch.Invocation{"bash", "start.sh"}, res.Invocation)
	assert.Contains(t, h.errOut.String(), "not executable")
	assert.Contains(t, h.out.String(), console.Prefix+"from script\n")
}

func TestRun_GracePeriodBoundsDraining(t *testing.T) {
	h := newHarness(t, manual(`sh -c "sleep 3 & echo hi"`), t.TempDir(), WithGracePeriod(200*time.Millisecond))

	start := time.Now()
	res, err := h.sup.Run(quietCtx(t))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, h.out.String(), console.Prefix+"hi\n")
	assert.Less(t, elapsed, 2*time.Second, "draining must not wait for the grandchild holding stdout")
}

const ignoreTerm = `sh -c 'trap "" TERM; echo ready; while :; do sleep 0.1; done'`

func signalWhenReady(t *testing.T, h *harness, sigs ...os.Signal) {
	t.Helper()

	go func() {
		if assert.Eventually(t, func() bool { return strings.Contains(h.out.String(), "ready") }, 5*time.Second, 10*time.Millisecond) {
			for _, s := range sigs {
				h.sigCh <- s
			}
		}
	}()
}

func TestRun_ForwardsSignalToNonJar(t *testing.T) {
	h := newHarness(t, manual(`sh -c 'trap "echo caught; exit 5" TERM; echo ready; while :; do sleep 0.1; done'`), t.TempDir())
	signalWhenReady(t, h, syscall.SIGTERM)

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)

	assert.False(t, res.StopSent)
	assert.False(t, res.Forced)
	assert.Equal(t, 5, res.ExitCode)
	assert.Contains(t, h.out.String(), console.Prefix+"caught\n")
	assert.Equal(t, fullRun, h.states)
}

func TestRun_StopTimeoutKills(t *testing.T) {
	h := newHarness(t, manual(ignoreTerm), t.TempDir(), WithStopTimeout(300*time.Millisecond))
	signalWhenReady(t, h, syscall.SIGTERM)

	start := time.Now()
	res, err := h.sup.Run(quietCtx(t))

	require.NoError(t, err)
	assert.True(t, res.Forced)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_DuplicateSignalKills(t *testing.T) {
	h := newHarness(t, manual(ignoreTerm), t.TempDir())
	signalWhenReady(t, h, syscall.SIGTERM, syscall.SIGTERM)

	start := time.Now()
	res, err := h.sup.Run(quietCtx(t))

	require.NoError(t, err)
	assert.True(t, res.Forced)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_ContextCancelKills(t *testing.T) {
	h := newHarness(t, manual("sleep 30"), t.TempDir())

	ctx, cancel := context.WithTimeout(quietCtx(t), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := h.sup.Run(ctx)

	require.NoError(t, err)
	assert.True(t, res.Forced)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, fullRun, h.states)
}

func TestRun_SignalQueuedBeforeStart(t *testing.T) {
	h := newHarness(t, manual(`sh -c "echo child-ran"`), t.TempDir())
	h.sigCh <- os.Interrupt

	res, err := h.sup.Run(quietCtx(t))

	require.ErrorIs(t, err, ErrInterrupted)
	assert.False(t, res.Spawned)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, []State{Idle, Validating, Terminated}, h.states)
	assert.NotContains(t, h.out.String(), "child-ran")
	assert.Contains(t, h.out.String(), "will not be started")
}

const deafJava = `#!/bin/sh
trap '' INT TERM
echo ready
while :; do sleep 0.1; done
`

func TestRun_StopWriteSharesKillDeadline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.jar"), []byte("PK"), 0o644))

	bin := t.TempDir()
	writeScript(t, bin, "java", deafJava)
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	// one line larger than the pipe buffer keeps the forwarder blocked in its write
	input := strings.NewReader(strings.Repeat("x", 1<<20) + "\n")

	cfg := config.ServerConfig{RamMax: "1G", RamMin: "1G", ServerTarget: "app.jar", UseOptions: true}
	h := newHarness(t, cfg, dir, WithInput(input), WithStopTimeout(time.Second))

	var signalled atomic.Int64

	go func() {
		if assert.Eventually(t, func() bool { return strings.Contains(h.out.String(), "ready") }, 5*time.Second, 10*time.Millisecond) {
			signalled.Store(time.Now().UnixNano())
			h.sigCh <- os.Interrupt
		}
	}()

	res, err := h.sup.Run(quietCtx(t))
	require.NoError(t, err)

	elapsed := time.Since(time.Unix(0, signalled.Load()))

	assert.True(t, res.StopSent)
	assert.True(t, res.Forced)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, elapsed, 1800*time.Millisecond)
}

func TestResolveProgram(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "local-only", "#!/bin/sh\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "adir"), 0o755))

	shPath, err := exec.LookPath("sh")
	require.NoError(t, err)

	tests := []struct {
		name    string
		program string
		want    string
		wantErr bool
	}{
		{name: "absolute", program: "/opt/x/run", want: "/opt/x/run"},
		{name: "relative path joins dir", program: "bin/run", want: filepath.Join(dir, "bin/run")},
		{name: "on PATH", program: "sh", want: shPath},
		{name: "only in dir", program: "local-only", want: filepath.Join(dir, "local-only")},
		{name: "directory is not a program", program: "adir", wantErr: true},
		{name: "nowhere", program: "anyjar-no-such-program-xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveProgram(tt.program, dir)
			if tt.wantErr {
				require.ErrorIs(t, err, exec.ErrNotFound)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
