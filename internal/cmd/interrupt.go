// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
)

// InterruptExitCode is the conventional exit status after SIGINT.
const InterruptExitCode = 130

var ErrInterrupted = errors.New("interrupt received")

func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsInterrupted(err), IsCancellation(err):
		return InterruptExitCode
	default:
		return 1
	}
}
