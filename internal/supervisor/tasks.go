// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/matt-FFFFFF/anyjar/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

const maxTasks = 3

// tasks runs the stream tasks of one child and remembers which are still running.
type tasks struct {
	g       errgroup.Group
	m       sync.Mutex
	running map[string]struct{}
	done    chan struct{}
}

func newTasks() *tasks {
	t := &tasks{
		running: make(map[string]struct{}, maxTasks),
		done:    make(chan struct{}),
	}
	t.g.SetLimit(maxTasks)

	return t
}

// start runs fn as a named task. Errors and panics are logged and end only that task.
// The returned channel is closed when the task has returned.
func (t *tasks) start(ctx context.Context, name string, fn func() error) <-chan struct{} {
	done := make(chan struct{})

	t.m.Lock()
	t.running[name] = struct{}{}
	t.m.Unlock()

	t.g.Go(func() error {
		defer close(done)

		defer func() {
			t.m.Lock()
			delete(t.running, name)
			t.m.Unlock()
		}()

		defer func() {
			if r := recover(); r != nil {
				ctxlog.Error(ctx, "task panicked", "task", name, "error", fmt.Errorf("%w: %v", ErrTaskPanic, r), "stack", string(debug.Stack()))
			}
		}()

		if err := fn(); err != nil {
			ctxlog.Error(ctx, "task failed", "task", name, "error", err)

			return nil
		}

		ctxlog.Debug(ctx, "task finished", "task", name)

		return nil
	})

	return done
}

// seal must be called once every task has been started.
func (t *tasks) seal() {
	go func() {
		_ = t.g.Wait()
		close(t.done)
	}()
}

// Done is closed when every task has returned.
func (t *tasks) Done() <-chan struct{} {
	return t.done
}

// Running returns the names of the tasks that have not returned yet.
func (t *tasks) Running() []string {
	t.m.Lock()
	defer t.m.Unlock()

	names := make([]string, 0, len(t.running))
	for n := range t.running {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}
