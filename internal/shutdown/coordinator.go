// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package shutdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
)

// HookFunc releases one resource: the SQLite cache, the RPC client or the
// JSON-RPC listener.
type HookFunc func(context.Context) error

type hook struct {
	name string
	fn   HookFunc
}

// Coordinator runs registered shutdown hooks exactly once, newest first, so
// resources opened later are closed before the ones they depend on.
type Coordinator struct {
	mu    sync.Mutex
	hooks []hook
	ran   bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Register adds a hook. Hooks registered after Run are ignored.
func (c *Coordinator) Register(name string, fn HookFunc) {
	if fn == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ran {
		logger.Logger.Debug("Ignoring shutdown hook registered after shutdown", "hook", name)
		return
	}
	c.hooks = append(c.hooks, hook{name: name, fn: fn})
}

// RegisterCloser registers a Close method that takes no context.
func (c *Coordinator) RegisterCloser(name string, closeFn func() error) {
	if closeFn == nil {
		return
	}
	c.Register(name, func(context.Context) error { return closeFn() })
}

// Len reports the number of pending hooks.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hooks)
}

// Run executes every hook, splitting the remaining ctx deadline evenly
// between the hooks still to run. All hook errors are joined.
func (c *Coordinator) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.ran {
		c.mu.Unlock()
		return nil
	}
	c.ran = true
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]

		start := time.Now()
		hookCtx, cancel := perHookContext(ctx, i+1)
		err := runHook(hookCtx, h)
		cancel()

		if err != nil {
			logger.Logger.Warn("Shutdown hook failed", "hook", h.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		logger.Logger.Debug("Shutdown hook completed", "hook", h.name, "duration", time.Since(start))
	}

	return errors.Join(errs...)
}

func runHook(ctx context.Context, h hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.fn(ctx)
}

func perHookContext(ctx context.Context, hooksRemaining int) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok || hooksRemaining <= 0 {
		return ctx, func() {}
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return context.WithTimeout(ctx, time.Millisecond)
	}

	return context.WithTimeout(ctx, remaining/time.Duration(hooksRemaining))
}
