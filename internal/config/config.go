// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/stellar/go-stellar-sdk/network"
)

type Network string

const (
	NetworkPublic     Network = "public"
	NetworkTestnet    Network = "testnet"
	NetworkFuturenet  Network = "futurenet"
	NetworkStandalone Network = "standalone"
)

var validNetworks = map[string]bool{
	string(NetworkPublic):     true,
	string(NetworkTestnet):    true,
	string(NetworkFuturenet):  true,
	string(NetworkStandalone): true,
}

const (
	DefaultMaxTypeDepth = 32
	maxTypeDepthCeiling = 256
)

// Config represents the general configuration for playground
type Config struct {
	RpcUrl       string  `json:"rpc_url,omitempty"`
	Network      Network `json:"network,omitempty"`
	LogLevel     string  `json:"log_level,omitempty"`
	CachePath    string  `json:"cache_path,omitempty"`
	RPCToken     string  `json:"rpc_token,omitempty"`
	MaxTypeDepth int     `json:"max_type_depth,omitempty"`
	DaemonPort   string  `json:"daemon_port,omitempty"`
	// AuthToken guards the daemon's JSON-RPC endpoint when non-empty.
	AuthToken    string `json:"auth_token,omitempty"`
	OTelEndpoint string `json:"otel_endpoint,omitempty"`

	// CrashReporting enables opt-in crash reporting.
	CrashReporting bool   `json:"crash_reporting,omitempty"`
	CrashEndpoint  string `json:"crash_endpoint,omitempty"`
	CrashSentryDSN string `json:"crash_sentry_dsn,omitempty"`
}

var defaultConfig = &Config{
	RpcUrl:       "https://soroban-testnet.stellar.org",
	Network:      NetworkTestnet,
	LogLevel:     "info",
	CachePath:    filepath.Join(os.ExpandEnv("$HOME"), ".playground", "cache.db"),
	MaxTypeDepth: DefaultMaxTypeDepth,
	DaemonPort:   "8080",
}

// Load builds the configuration from defaults, the first config file found,
// a .env file and the environment, in increasing order of precedence.
// The result is not validated; callers apply flag overrides first and then
// call Validate.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		return nil, err
	}

	// .env values never override variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Logger.Warn("Ignoring unreadable .env file", "error", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.RpcUrl = getEnv("PLAYGROUND_RPC_URL", c.RpcUrl)
	c.Network = Network(getEnv("PLAYGROUND_NETWORK", string(c.Network)))
	c.LogLevel = getEnv("PLAYGROUND_LOG_LEVEL", c.LogLevel)
	c.CachePath = getEnv("PLAYGROUND_CACHE_PATH", c.CachePath)
	c.RPCToken = getEnv("PLAYGROUND_RPC_TOKEN", c.RPCToken)
	c.DaemonPort = getEnv("PLAYGROUND_DAEMON_PORT", c.DaemonPort)
	c.AuthToken = getEnv("PLAYGROUND_AUTH_TOKEN", c.AuthToken)
	c.OTelEndpoint = getEnv("PLAYGROUND_OTEL_ENDPOINT", c.OTelEndpoint)
	c.CrashEndpoint = getEnv("PLAYGROUND_CRASH_ENDPOINT", c.CrashEndpoint)
	c.CrashSentryDSN = getEnv("PLAYGROUND_SENTRY_DSN", c.CrashSentryDSN)
	if raw := os.Getenv("PLAYGROUND_CRASH_REPORTING"); raw != "" {
		c.CrashReporting = parseBool(raw)
	}

	if raw := os.Getenv("PLAYGROUND_MAX_TYPE_DEPTH"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return errors.WrapConfigError("PLAYGROUND_MAX_TYPE_DEPTH must be an integer", err)
		}
		c.MaxTypeDepth = depth
	}
	return nil
}

func (c *Config) loadFromFile() error {
	paths := []string{
		".playground.toml",
		filepath.Join(os.ExpandEnv("$HOME"), ".playground.toml"),
		"/etc/playground/config.toml",
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.WrapConfigError("failed to read config file "+path, err)
		}
		return c.parseTOML(path, data)
	}

	return nil
}

// fileConfig mirrors the keys accepted in a config file. Pointer fields
// distinguish an absent key from a zero value.
type fileConfig struct {
	RpcUrl         *string `toml:"rpc_url"`
	Network        *string `toml:"network"`
	LogLevel       *string `toml:"log_level"`
	CachePath      *string `toml:"cache_path"`
	RPCToken       *string `toml:"rpc_token"`
	MaxTypeDepth   *int    `toml:"max_type_depth"`
	DaemonPort     *string `toml:"daemon_port"`
	AuthToken      *string `toml:"auth_token"`
	OTelEndpoint   *string `toml:"otel_endpoint"`
	CrashReporting *bool   `toml:"crash_reporting"`
	CrashEndpoint  *string `toml:"crash_endpoint"`
	CrashSentryDSN *string `toml:"crash_sentry_dsn"`
}

func (c *Config) parseTOML(path string, data []byte) error {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return errors.WrapConfigError("failed to parse config file "+path, err)
	}

	setString(&c.RpcUrl, fc.RpcUrl)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.CachePath, fc.CachePath)
	setString(&c.RPCToken, fc.RPCToken)
	setString(&c.DaemonPort, fc.DaemonPort)
	setString(&c.AuthToken, fc.AuthToken)
	setString(&c.OTelEndpoint, fc.OTelEndpoint)
	setString(&c.CrashEndpoint, fc.CrashEndpoint)
	setString(&c.CrashSentryDSN, fc.CrashSentryDSN)
	if fc.Network != nil {
		c.Network = Network(*fc.Network)
	}
	if fc.MaxTypeDepth != nil {
		c.MaxTypeDepth = *fc.MaxTypeDepth
	}
	if fc.CrashReporting != nil {
		c.CrashReporting = *fc.CrashReporting
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) Validate() error {
	return RunValidators(c, DefaultValidators())
}

// NetworkPassphrase returns the passphrase used to derive asset contract ids.
func (c *Config) NetworkPassphrase() string {
	switch c.Network {
	case NetworkPublic:
		return network.PublicNetworkPassphrase
	case NetworkFuturenet:
		return network.FutureNetworkPassphrase
	case NetworkStandalone:
		return "Standalone Network ; February 2017"
	default:
		return network.TestNetworkPassphrase
	}
}

func (c *Config) NetworkURL() string {
	switch c.Network {
	case NetworkPublic:
		return "https://soroban-rpc.mainnet.stellar.gateway.fm"
	case NetworkTestnet:
		return "https://soroban-testnet.stellar.org"
	case NetworkFuturenet:
		return "https://rpc-futurenet.stellar.org"
	case NetworkStandalone:
		return "http://localhost:8000/soroban/rpc"
	default:
		return c.RpcUrl
	}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{RPC: %s, Network: %s, LogLevel: %s, CachePath: %s, MaxTypeDepth: %d}",
		c.RpcUrl, c.Network, c.LogLevel, c.CachePath, c.MaxTypeDepth,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func DefaultConfig() *Config {
	cfg := *defaultConfig
	return &cfg
}

func NewConfig(rpcUrl string, network Network) *Config {
	cfg := DefaultConfig()
	cfg.RpcUrl = rpcUrl
	cfg.Network = network
	return cfg
}

func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

func (c *Config) WithCachePath(path string) *Config {
	c.CachePath = path
	return c
}

func (c *Config) WithMaxTypeDepth(depth int) *Config {
	c.MaxTypeDepth = depth
	return c
}
