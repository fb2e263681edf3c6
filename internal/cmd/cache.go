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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JoseCToscano/policies-playground-sub000/internal/db"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	cacheDryRunFlag bool
	cacheForceFlag  bool
	cacheLimitFlag  int
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "utility",
	Short:   "Manage the local WASM cache and lookup history",
	Long: `Manage the local SQLite database that stores fetched contract WASM by hash
and a history of resolved addresses.

Cache location: ~/.playground/cache.db (configurable via PLAYGROUND_CACHE_PATH)

Available subcommands:
  status  - View cached WASM and history counts
  recent  - List the most recent lookups
  clear   - Delete all cached data`,
	Example: `  # Check cache status
  playground cache status

  # Show what clear would delete
  playground cache clear --dry-run

  # Clear all cache
  playground cache clear`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cache file: %s\n", cfg.CachePath)
		fmt.Fprintf(out, "WASM cached: %d (%s)\n", stats.WasmEntries, formatBytes(stats.WasmBytes))
		fmt.Fprintf(out, "Lookups recorded: %d\n", stats.Lookups)
		return nil
	},
}

var cacheRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently resolved contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer store.Close()

		lookups, err := store.RecentLookups(cmd.Context(), cacheLimitFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(lookups) == 0 {
			fmt.Fprintln(out, "No lookups recorded")
			return nil
		}
		for _, l := range lookups {
			hash := l.WasmHash
			if hash == "" {
				hash = "asset"
			} else if len(hash) > 12 {
				hash = hash[:12]
			}
			fmt.Fprintf(out, "%s  %-10s %-12s %s\n", l.LookedUpAt.Format("2006-01-02 15:04:05"), l.Network, hash, l.ContractID)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached WASM and lookup history",
	Long: `Remove all cached WASM and the lookup history.

Use --dry-run to see what would be deleted without deleting anything.
On an interactive terminal clear asks for confirmation unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if !cacheDryRunFlag && !cacheForceFlag && isatty.IsTerminal(os.Stdin.Fd()) {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("This will delete ALL cached data in %s", cfg.CachePath))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache clear cancelled")
				return nil
			}
		}

		res, err := store.Clear(cmd.Context(), cacheDryRunFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.DryRun {
			fmt.Fprintf(out, "[DRY-RUN] Would delete %d WASM entries and %d lookups\n", res.WasmEntries, res.Lookups)
			return nil
		}
		fmt.Fprintf(out, "Deleted %d WASM entries and %d lookups\n", res.WasmEntries, res.Lookups)
		return nil
	},
}

// confirm asks a yes/no question on in and reports whether the answer was
// yes.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s\nAre you sure? (yes/no): ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// formatBytes converts bytes to human-readable format
func formatBytes(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	unitIndex := 0

	for size >= 1024 && unitIndex < len(units)-1 {
		size /= 1024
		unitIndex++
	}

	if unitIndex == 0 {
		return fmt.Sprintf("%.0f %s", size, units[unitIndex])
	}
	return fmt.Sprintf("%.2f %s", size, units[unitIndex])
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheRecentCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().BoolVar(&cacheDryRunFlag, "dry-run", false, "Report what would be deleted without deleting")
	cacheClearCmd.Flags().BoolVarP(&cacheForceFlag, "force", "f", false, "Skip confirmation prompt")
	cacheRecentCmd.Flags().IntVar(&cacheLimitFlag, "limit", 20, "Maximum number of lookups to list")

	rootCmd.AddCommand(cacheCmd)
}
