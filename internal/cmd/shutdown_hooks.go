// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/db"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/rpc"
	"github.com/JoseCToscano/policies-playground-sub000/internal/shutdown"
)

const shutdownTimeout = 3 * time.Second

var shutdownState struct {
	mu          sync.RWMutex
	coordinator *shutdown.Coordinator
}

func setShutdownCoordinator(c *shutdown.Coordinator) {
	shutdownState.mu.Lock()
	defer shutdownState.mu.Unlock()
	shutdownState.coordinator = c
}

func clearShutdownCoordinator() {
	shutdownState.mu.Lock()
	defer shutdownState.mu.Unlock()
	shutdownState.coordinator = nil
}

// registerShutdownHook reports whether a coordinator took ownership of fn.
// Callers must release the resource themselves when it did not.
func registerShutdownHook(name string, fn shutdown.HookFunc) bool {
	shutdownState.mu.RLock()
	c := shutdownState.coordinator
	shutdownState.mu.RUnlock()
	if c == nil {
		return false
	}
	c.Register(name, fn)
	return true
}

func runShutdownHooksWithTimeout(c *shutdown.Coordinator, timeout time.Duration) {
	if c == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		logger.Logger.Warn("Shutdown hooks completed with errors", "error", err)
	}
}

// registerStoreCloseHook closes the SQLite cache after every other hook.
func registerStoreCloseHook(store *db.Store) func() {
	if store == nil {
		return func() {}
	}
	if registerShutdownHook("sqlite-cache-close", func(context.Context) error {
		return store.Close()
	}) {
		return func() {}
	}
	return func() { _ = store.Close() }
}

func registerClientCloseHook(client *rpc.Client) func() {
	if client == nil {
		return func() {}
	}
	if registerShutdownHook("rpc-client-close", func(context.Context) error {
		client.Close()
		return nil
	}) {
		return func() {}
	}
	return client.Close
}
