// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package shutdown

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_NewestFirstAndOnce(t *testing.T) {
	c := NewCoordinator()
	var order []string
	for _, name := range []string{"cache", "rpc", "server"} {
		c.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	require.Equal(t, 3, c.Len())

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"server", "rpc", "cache"}, order)
	assert.Zero(t, c.Len())

	order = nil
	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, order)
}

func TestRun_JoinsErrorsAndKeepsGoing(t *testing.T) {
	errDisk := fmt.Errorf("disk gone")
	c := NewCoordinator()
	ran := 0
	c.Register("cache", func(context.Context) error { ran++; return errDisk })
	c.Register("rpc", func(context.Context) error { ran++; return nil })
	c.RegisterCloser("db", func() error { ran++; return fmt.Errorf("locked") })

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, ran)
	assert.True(t, errors.Is(err, errDisk))
	assert.Contains(t, err.Error(), "cache: disk gone")
	assert.Contains(t, err.Error(), "db: locked")
}

func TestRun_RecoversPanics(t *testing.T) {
	c := NewCoordinator()
	closed := false
	c.Register("first", func(context.Context) error { closed = true; return nil })
	c.Register("boom", func(context.Context) error { panic("bad state") })

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom: panic: bad state")
	assert.True(t, closed)
}

func TestRegister_IgnoredAfterRunAndNil(t *testing.T) {
	c := NewCoordinator()
	c.Register("nil", nil)
	c.RegisterCloser("nil", nil)
	assert.Zero(t, c.Len())

	require.NoError(t, c.Run(context.Background()))
	c.Register("late", func(context.Context) error { return nil })
	assert.Zero(t, c.Len())
}

func TestRun_SplitsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c := NewCoordinator()
	var budgets []time.Duration
	for i := 0; i < 2; i++ {
		c.Register(fmt.Sprintf("hook%d", i), func(hctx context.Context) error {
			d, ok := hctx.Deadline()
			require.True(t, ok)
			budgets = append(budgets, time.Until(d))
			return nil
		})
	}

	require.NoError(t, c.Run(ctx))
	require.Len(t, budgets, 2)
	// the first hook to run gets half of the budget, the last gets the rest
	assert.Less(t, budgets[0], 600*time.Millisecond)
	assert.Greater(t, budgets[1], 300*time.Millisecond)
}

func TestPerHookContext_NoDeadline(t *testing.T) {
	ctx, cancel := perHookContext(context.Background(), 3)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)
}
