// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/config"
	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
)

type ClientOption func(*clientBuilder) error

type clientBuilder struct {
	network    config.Network
	url        string
	token      string
	httpClient *http.Client
	getter     LedgerEntryGetter
	cache      WasmCache
	retry      RetryConfig
}

func newBuilder() *clientBuilder {
	return &clientBuilder{
		network: config.NetworkTestnet,
		retry:   DefaultRetryConfig(),
	}
}

func WithNetwork(net config.Network) ClientOption {
	return func(b *clientBuilder) error {
		if net == "" {
			net = config.NetworkTestnet
		}
		b.network = net
		return nil
	}
}

func WithURL(rawURL string) ClientOption {
	return func(b *clientBuilder) error {
		if rawURL != "" {
			if err := isValidURL(rawURL); err != nil {
				return errors.WrapValidationError(fmt.Sprintf("invalid RPC URL: %v", err))
			}
		}
		b.url = rawURL
		return nil
	}
}

func WithToken(token string) ClientOption {
	return func(b *clientBuilder) error {
		b.token = token
		return nil
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(b *clientBuilder) error {
		b.httpClient = client
		return nil
	}
}

// WithLedgerEntryGetter replaces the RPC transport entirely, mostly for
// tests and offline tooling.
func WithLedgerEntryGetter(getter LedgerEntryGetter) ClientOption {
	return func(b *clientBuilder) error {
		b.getter = getter
		return nil
	}
}

func WithWasmCache(cache WasmCache) ClientOption {
	return func(b *clientBuilder) error {
		b.cache = cache
		return nil
	}
}

func WithRetry(cfg RetryConfig) ClientOption {
	return func(b *clientBuilder) error {
		if cfg.MaxRetries < 0 {
			return errors.WrapValidationError("max retries must not be negative")
		}
		b.retry = cfg
		return nil
	}
}

func (b *clientBuilder) build() (*Client, error) {
	if b.url == "" {
		b.url = (&config.Config{Network: b.network}).NetworkURL()
	}
	if b.url == "" {
		return nil, errors.WrapInvalidNetwork(string(b.network))
	}

	c := &Client{
		Network: b.network,
		URL:     b.url,
		getter:  b.getter,
		cache:   b.cache,
	}

	if c.getter == nil {
		httpClient := b.httpClient
		if httpClient == nil {
			httpClient = createHTTPClient(b.token, b.retry)
		}
		rc := newRPCClient(b.url, httpClient)
		c.getter = rc
		c.closer = func() { rc.Close() }
	}

	return c, nil
}

func createHTTPClient(token string, retry RetryConfig) *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &authTransport{
			token:     token,
			transport: NewRetryTransport(retry, http.DefaultTransport),
		},
	}
}

func isValidURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
