// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/JoseCToscano/policies-playground-sub000/internal/config"
	"github.com/JoseCToscano/policies-playground-sub000/internal/contract"
	"github.com/JoseCToscano/policies-playground-sub000/internal/db"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/rpc"
	"github.com/spf13/cobra"
)

var (
	inspectFormat  string
	inspectNoCache bool
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <address>",
	GroupID: "core",
	Short:   "Resolve a contract address to its interface",
	Long: `Resolve a contract address and print its interface.

The address may be:
  native          the native XLM asset contract
  CODE-ISSUER     an issued asset's contract, e.g. USDC-GA5Z...
  C...            a deployed contract id; its WASM is fetched over RPC

Asset contracts are answered without contacting the network. Fetched WASM is
cached by hash unless --no-cache is given.

Examples:
  playground inspect native
  playground inspect USDC-GBBD47IF6LWK7P7MDEVSCWR7DPUWV3NY3DTQEVFL4NAT4AQH3ZLLFLA5
  playground inspect --network public --format json CAS3J7GYLGXMF6TDJBBYYSE3HQ6BBSMLNUQ34T6TZMYMW2EVH34XOWMA`,
	Args: cobra.ExactArgs(1),
	RunE: inspectExec,
}

func inspectExec(cmd *cobra.Command, args []string) error {
	address := args[0]
	ctx := cmd.Context()

	var store *db.Store
	if !inspectNoCache {
		s, err := db.Open(cfg.CachePath)
		if err != nil {
			logger.Logger.Warn("Continuing without cache", "path", cfg.CachePath, "error", err)
		} else {
			store = s
			defer registerStoreCloseHook(store)()
		}
	}

	var source contract.WasmSource
	if !contract.IsVirtual(address) {
		client, err := newRPCClient(cfg, store)
		if err != nil {
			return err
		}
		defer registerClientCloseHook(client)()
		source = client
	}

	opts := []contract.Option{
		contract.WithMaxDepth(cfg.MaxTypeDepth),
		contract.WithNetwork(string(cfg.Network)),
	}
	if store != nil {
		opts = append(opts, contract.WithRecorder(store))
	}
	resolver := contract.NewResolver(source, opts...)

	ci, err := resolver.Interface(ctx, address)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if contract.IsVirtual(address) && inspectFormat == "text" {
		id, err := contract.AssetContractID(address, cfg.NetworkPassphrase())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Asset contract %s on %s: %s\n\n", address, cfg.Network, id)
	}

	return writeInterface(out, ci, inspectFormat)
}

// newRPCClient builds a client for c. An rpc_url that was never changed from
// the default is ignored so the network's own endpoint is used.
func newRPCClient(c *config.Config, store *db.Store) (*rpc.Client, error) {
	opts := []rpc.ClientOption{rpc.WithNetwork(c.Network)}
	if c.RpcUrl != "" && c.RpcUrl != config.DefaultConfig().RpcUrl {
		opts = append(opts, rpc.WithURL(c.RpcUrl))
	}
	if c.RPCToken != "" {
		opts = append(opts, rpc.WithToken(c.RPCToken))
	}
	if store != nil {
		opts = append(opts, rpc.WithWasmCache(store))
	}
	return rpc.NewClient(opts...)
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format: text or json")
	inspectCmd.Flags().BoolVar(&inspectNoCache, "no-cache", false, "Bypass the local WASM cache and lookup history")
	rootCmd.AddCommand(inspectCmd)
}
