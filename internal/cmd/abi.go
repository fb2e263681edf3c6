// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/JoseCToscano/policies-playground-sub000/internal/abi"
	"github.com/JoseCToscano/policies-playground-sub000/internal/contract"
	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/spf13/cobra"
)

var abiFormat string

var abiCmd = &cobra.Command{
	Use:     "abi <wasm-file>",
	GroupID: "core",
	Short:   "Decode and display the interface of a local Soroban WASM file",
	Long: `Parse a compiled Soroban WASM file and print its contract interface
(functions, structs, enums, error enums, unions and events).

The spec is read from the "contractspecv0" WASM custom section, which
Soroban compilers embed automatically. Contract metadata from
"contractmetav0" and "contractenvmetav0" is shown when present.

Examples:
  playground abi ./target/wasm32-unknown-unknown/release/contract.wasm
  playground abi --format json ./contract.wasm`,
	Args: cobra.ExactArgs(1),
	RunE: abiExec,
}

func abiExec(cmd *cobra.Command, args []string) error {
	wasmBytes, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading WASM file: %w", err)
	}

	renderer := abi.Renderer{MaxDepth: cfg.MaxTypeDepth, OnFallback: contract.ReportFallback}
	ci, err := renderer.DecodeWasm(wasmBytes)
	if err != nil {
		return err
	}

	return writeInterface(cmd.OutOrStdout(), ci, abiFormat)
}

// writeInterface prints ci in the requested format.
func writeInterface(w io.Writer, ci *abi.ContractInterface, format string) error {
	switch format {
	case "json":
		output, err := abi.FormatJSON(ci)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, output)
		return err
	case "text":
		_, err := fmt.Fprint(w, abi.FormatText(ci))
		return err
	default:
		return errors.WrapValidationError(fmt.Sprintf("unsupported format: %s (use: text, json)", format))
	}
}

func init() {
	abiCmd.Flags().StringVar(&abiFormat, "format", "text", "Output format: text or json")
	rootCmd.AddCommand(abiCmd)
}
