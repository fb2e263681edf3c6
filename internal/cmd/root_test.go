// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/abi"
	"github.com/JoseCToscano/policies-playground-sub000/internal/shutdown"
	"github.com/fatih/color"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteWithSignals_InterruptReturnsSentinelAndRunsShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	coordinator := shutdown.NewCoordinator()
	ranShutdownHook := make(chan struct{}, 1)
	coordinator.Register("test-hook", func(context.Context) error {
		ranShutdownHook <- struct{}{}
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- executeWithSignals(ctx, cancel, sigCh, coordinator, func(execCtx context.Context) error {
			<-execCtx.Done()
			return execCtx.Err()
		})
	}()

	sigCh <- os.Interrupt

	select {
	case err := <-done:
		assert.True(t, IsInterrupted(err), "expected interrupt error, got %v", err)
		assert.Equal(t, InterruptExitCode, ExitCode(err))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for executeWithSignals to return")
	}

	select {
	case <-ranShutdownHook:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown hook to run")
	}
}

func TestExecuteWithSignals_NoInterruptReturnsExecError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator := shutdown.NewCoordinator()
	ran := false
	coordinator.Register("hook", func(context.Context) error { ran = true; return nil })

	err := executeWithSignals(ctx, cancel, make(chan os.Signal), coordinator, func(context.Context) error {
		return context.DeadlineExceeded
	})
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.True(t, ran)
}

func TestExitCode(t *testing.T) {
	assert.Zero(t, ExitCode(nil))
	assert.Equal(t, InterruptExitCode, ExitCode(context.Canceled))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.50 KB", formatBytes(1536))
	assert.Equal(t, "2.00 MB", formatBytes(2*1024*1024))
}

// runCLI executes the root command in an isolated environment.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithEnv(t, map[string]string{"PLAYGROUND_NETWORK": "testnet"}, args...)
}

func runCLIWithEnv(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("PLAYGROUND_CACHE_PATH", filepath.Join(dir, "cache.db"))
	for k, v := range env {
		t.Setenv(k, v)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func leb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func writeSpecWasm(t *testing.T, entries ...xdr.ScSpecEntry) string {
	t.Helper()
	var payload []byte
	for _, e := range entries {
		b, err := e.MarshalBinary()
		require.NoError(t, err)
		payload = append(payload, b...)
	}

	name := []byte(abi.SectionSpec)
	content := append(leb128(uint32(len(name))), name...)
	content = append(content, payload...)

	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x00}
	wasm = append(wasm, leb128(uint32(len(content)))...)
	wasm = append(wasm, content...)

	path := filepath.Join(t.TempDir(), "contract.wasm")
	require.NoError(t, os.WriteFile(path, wasm, 0o644))
	return path
}

func TestAbiCommand(t *testing.T) {
	path := writeSpecWasm(t, xdr.ScSpecEntry{
		Kind: xdr.ScSpecEntryKindScSpecEntryFunctionV0,
		FunctionV0: &xdr.ScSpecFunctionV0{
			Name: "increment",
			Inputs: []xdr.ScSpecFunctionInputV0{
				{Name: "by", Type: xdr.ScSpecTypeDef{Type: xdr.ScSpecTypeScSpecTypeU32}},
			},
			Outputs: []xdr.ScSpecTypeDef{{Type: xdr.ScSpecTypeScSpecTypeU32}},
		},
	})

	out, err := runCLI(t, "abi", "--format", "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Functions (1):")
	assert.Contains(t, out, "increment(by: u32) -> u32")
}

func TestAbiCommand_Errors(t *testing.T) {
	_, err := runCLI(t, "abi", "--format", "text", filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorContains(t, err, "reading WASM file")

	path := writeSpecWasm(t, xdr.ScSpecEntry{
		Kind:       xdr.ScSpecEntryKindScSpecEntryFunctionV0,
		FunctionV0: &xdr.ScSpecFunctionV0{Name: "noop"},
	})
	_, err = runCLI(t, "abi", "--format", "yaml", path)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestInspectCommand_Native(t *testing.T) {
	out, err := runCLI(t, "inspect", "--no-cache", "--format", "text", "native")
	require.NoError(t, err)
	assert.Contains(t, out, "Asset contract native on testnet: CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC")
	assert.Contains(t, out, "balance(id: address) -> i128")
	assert.Contains(t, out, "Decimals: 7")
}

func TestInspectCommand_RecordsLookupInCache(t *testing.T) {
	_, err := runCLI(t, "inspect", "--no-cache=false", "--format", "json", "native")
	require.NoError(t, err)

	out, err := runCLICache(t, "cache", "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "native")
}

// runCLICache reruns the CLI against the cache of the previous runCLI call
// in the same test.
func runCLICache(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheCommands(t *testing.T) {
	out, err := runCLI(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "WASM cached: 0 (0 B)")
	assert.Contains(t, out, "Lookups recorded: 0")

	out, err = runCLICache(t, "cache", "clear", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[DRY-RUN] Would delete 0 WASM entries and 0 lookups")

	out, err = runCLICache(t, "cache", "clear", "--dry-run=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 WASM entries")
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"yes\n": true, "Y\n": true, "no\n": false, "": false} {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(input), &out, "Delete?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Are you sure? (yes/no): ")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "playground version dev")
}

func TestInvalidNetworkFlag(t *testing.T) {
	_, err := runCLI(t, "inspect", "--network", "moonnet", "--no-cache", "--format", "text", "native")
	require.Error(t, err)
	NetworkFlag = "testnet"
	_ = rootCmd.PersistentFlags().Set("network", "testnet")
}

func TestNetworkFlagOverridesInvalidEnv(t *testing.T) {
	out, err := runCLIWithEnv(t, map[string]string{"PLAYGROUND_NETWORK": "bogus"},
		"inspect", "--network", "testnet", "--no-cache", "--format", "text", "native")
	require.NoError(t, err)
	assert.Contains(t, out, "on testnet")
}
