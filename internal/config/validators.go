// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
)

// Validator validates a specific aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// NetworkValidator checks that the configured network is recognized.
type NetworkValidator struct{}

func (v NetworkValidator) Validate(cfg *Config) error {
	if cfg.Network != "" && !validNetworks[string(cfg.Network)] {
		return errors.WrapInvalidNetwork(string(cfg.Network))
	}
	return nil
}

// RPCValidator checks that RPC connection fields are properly set.
type RPCValidator struct{}

func (v RPCValidator) Validate(cfg *Config) error {
	if cfg.RpcUrl == "" {
		return errors.WrapValidationError("rpc_url cannot be empty")
	}
	if !strings.HasPrefix(cfg.RpcUrl, "http://") && !strings.HasPrefix(cfg.RpcUrl, "https://") {
		return errors.WrapValidationError("rpc_url must use http or https scheme")
	}
	return nil
}

// DepthValidator bounds the type renderer's nesting limit.
type DepthValidator struct{}

func (v DepthValidator) Validate(cfg *Config) error {
	if cfg.MaxTypeDepth < 1 || cfg.MaxTypeDepth > maxTypeDepthCeiling {
		return errors.WrapValidationError(fmt.Sprintf("max_type_depth must be between 1 and %d, got %d", maxTypeDepthCeiling, cfg.MaxTypeDepth))
	}
	return nil
}

// DaemonValidator checks the daemon port when set.
type DaemonValidator struct{}

func (v DaemonValidator) Validate(cfg *Config) error {
	if cfg.DaemonPort == "" {
		return nil
	}
	port, err := strconv.Atoi(cfg.DaemonPort)
	if err != nil || port < 1 || port > 65535 {
		return errors.WrapValidationError("daemon_port must be a number between 1 and 65535")
	}
	return nil
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// DefaultValidators returns the standard set of validators.
func DefaultValidators() []Validator {
	return []Validator{
		RPCValidator{},
		NetworkValidator{},
		DepthValidator{},
		DaemonValidator{},
		LogLevelValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
