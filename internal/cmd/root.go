// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JoseCToscano/policies-playground-sub000/internal/config"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/shutdown"
	"github.com/spf13/cobra"
)

// Global flag variables
var (
	LogLevelFlag string
	LogJSONFlag  bool
	NetworkFlag  string
	RPCURLFlag   string
	MaxDepthFlag int
)

// cfg is resolved once per invocation by the root PersistentPreRunE.
var cfg = config.DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "playground",
	Short: "Inspect Soroban contract interfaces",
	Long: `Playground decodes the contract spec embedded in Soroban WASM and renders
every function, struct, enum and union as a readable signature.

Key features:
  - Decode a local WASM file without touching the network
  - Resolve deployed contracts by id through Soroban RPC
  - Answer Stellar asset contracts ("native" or CODE-ISSUER) offline
  - Serve the same operations over JSON-RPC for editors and web UIs
  - Cache fetched WASM by hash in a local SQLite database

Examples:
  playground abi ./contract.wasm                  Decode a local build
  playground inspect CDLZ...GCYSC                 Resolve a deployed contract
  playground inspect native --format json         Print the native token interface
  playground daemon --port 8080                   Start the JSON-RPC server
  playground cache status                         Check cache usage`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger.SetOutput(os.Stderr, LogJSONFlag)
		logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
		logger.Logger.Debug("Configuration loaded", "config", cfg.String())
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// applyFlagOverrides gives explicitly set flags precedence over every other
// configuration source.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = LogLevelFlag
	}
	if flags.Changed("network") {
		c.Network = config.Network(NetworkFlag)
	}
	if flags.Changed("rpc-url") {
		c.RpcUrl = RPCURLFlag
	}
	if flags.Changed("max-depth") {
		c.MaxTypeDepth = MaxDepthFlag
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	coordinator := shutdown.NewCoordinator()
	setShutdownCoordinator(coordinator)
	defer clearShutdownCoordinator()

	return executeWithSignals(ctx, cancel, sigCh, coordinator, rootCmd.ExecuteContext)
}

// executeWithSignals runs exec and cancels its context on the first signal.
// Shutdown hooks always run before it returns. An interrupted run reports
// ErrInterrupted regardless of what exec returned.
func executeWithSignals(
	ctx context.Context,
	cancel context.CancelFunc,
	sigCh <-chan os.Signal,
	coordinator *shutdown.Coordinator,
	exec func(context.Context) error,
) error {
	interrupted := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Logger.Info("Received signal, shutting down", "signal", sig.String())
			close(interrupted)
			cancel()
		case <-ctx.Done():
		}
	}()

	err := exec(ctx)
	runShutdownHooksWithTimeout(coordinator, shutdownTimeout)

	select {
	case <-interrupted:
		return ErrInterrupted
	default:
		return err
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&LogLevelFlag,
		"log-level",
		"info",
		"Log level: debug, info, warn or error",
	)

	rootCmd.PersistentFlags().BoolVar(
		&LogJSONFlag,
		"log-json",
		false,
		"Emit logs as JSON",
	)

	rootCmd.PersistentFlags().StringVarP(
		&NetworkFlag,
		"network",
		"n",
		string(config.NetworkTestnet),
		"Stellar network: public, testnet, futurenet or standalone",
	)

	rootCmd.PersistentFlags().StringVar(
		&RPCURLFlag,
		"rpc-url",
		"",
		"Soroban RPC URL (defaults to the network's public endpoint)",
	)

	rootCmd.PersistentFlags().IntVar(
		&MaxDepthFlag,
		"max-depth",
		config.DefaultMaxTypeDepth,
		"Maximum type nesting depth accepted by the renderer",
	)

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Contract Commands:"},
		&cobra.Group{ID: "utility", Title: "Utility Commands:"},
	)
}
