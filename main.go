// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/JoseCToscano/policies-playground-sub000/internal/cmd"
	"github.com/JoseCToscano/policies-playground-sub000/internal/config"
	"github.com/JoseCToscano/policies-playground-sub000/internal/crashreport"
)

// Build-time variables injected via -ldflags.
var (
	version   = "dev"
	commitSHA = "unknown"
)

func main() {
	ctx := context.Background()
	cmd.Version = version
	cmd.CommitSHA = commitSHA

	// Load config only to learn whether crash reporting is opted in; the
	// command itself reports configuration errors.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	reporter := crashreport.New(crashreport.Config{
		Enabled:   cfg.CrashReporting,
		SentryDSN: cfg.CrashSentryDSN,
		Endpoint:  cfg.CrashEndpoint,
		Version:   version,
		CommitSHA: commitSHA,
	})
	defer reporter.HandlePanic(ctx, "playground")

	os.Exit(run(cmd.Execute, os.Stderr))
}

// run executes the CLI and maps its error to an exit status.
func run(execute func() error, stderr io.Writer) int {
	err := execute()
	switch {
	case err == nil:
		return 0
	case cmd.IsInterrupted(err):
		fmt.Fprintln(stderr, "Interrupted. Shutting down...")
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return cmd.ExitCode(err)
}
