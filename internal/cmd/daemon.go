// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/JoseCToscano/policies-playground-sub000/internal/contract"
	"github.com/JoseCToscano/policies-playground-sub000/internal/daemon"
	"github.com/JoseCToscano/policies-playground-sub000/internal/db"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	daemonPort      string
	daemonAuthToken string
	daemonTracing   bool
	daemonOTLPURL   string
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "core",
	Short:   "Start JSON-RPC server for contract interface lookups",
	Long: `Start a JSON-RPC 2.0 server that exposes playground functionality to editors
and web UIs.

Methods (POST /rpc):
  - Playground.ContractInterface: resolve an address to its interface
  - Playground.DecodeSpec: decode a base64 contractspecv0 payload
  - Playground.RenderType: render one base64 ScSpecTypeDef

GET /health reports server and upstream RPC status; GET /metrics serves
Prometheus metrics.

Example:
  playground daemon --port 8080 --network testnet
  playground daemon --port 8080 --auth-token secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("port") {
			cfg.DaemonPort = daemonPort
		}
		if cmd.Flags().Changed("auth-token") {
			cfg.AuthToken = daemonAuthToken
		}
		if !cmd.Flags().Changed("otlp-url") && cfg.OTelEndpoint != "" {
			daemonOTLPURL = cfg.OTelEndpoint
		}

		// Initialize OpenTelemetry if enabled
		if daemonTracing {
			cleanup, err := telemetry.Init(ctx, telemetry.Config{
				Enabled:        true,
				ExporterURL:    daemonOTLPURL,
				ServiceName:    "playground-daemon",
				ServiceVersion: Version,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize telemetry: %w", err)
			}
			defer cleanup()
		}

		store, err := db.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer registerStoreCloseHook(store)()

		client, err := newRPCClient(cfg, store)
		if err != nil {
			return err
		}
		defer registerClientCloseHook(client)()

		resolver := contract.NewResolver(client,
			contract.WithMaxDepth(cfg.MaxTypeDepth),
			contract.WithNetwork(string(cfg.Network)),
			contract.WithRecorder(store),
		)

		server := daemon.NewServer(resolver, daemon.Config{
			Network:   string(cfg.Network),
			AuthToken: cfg.AuthToken,
			Upstream:  client,
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Starting playground daemon on port %s\n", cfg.DaemonPort)
		fmt.Fprintf(out, "Network: %s\n", cfg.Network)
		fmt.Fprintf(out, "RPC URL: %s\n", client.URL)
		if cfg.AuthToken != "" {
			fmt.Fprintln(out, "Authentication: enabled")
		}
		logger.Logger.Debug("Daemon cache", "path", cfg.CachePath)

		// Execute cancels ctx on SIGINT/SIGTERM, which stops the server.
		return server.Start(ctx, cfg.DaemonPort)
	},
}

func init() {
	daemonCmd.Flags().StringVarP(&daemonPort, "port", "p", "8080", "Port to listen on")
	daemonCmd.Flags().StringVar(&daemonAuthToken, "auth-token", "", "Authentication token for API access")
	daemonCmd.Flags().BoolVar(&daemonTracing, "tracing", false, "Enable OpenTelemetry tracing")
	daemonCmd.Flags().StringVar(&daemonOTLPURL, "otlp-url", "http://localhost:4318", "OTLP exporter URL")

	rootCmd.AddCommand(daemonCmd)
}
