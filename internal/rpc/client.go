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

package rpc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JoseCToscano/policies-playground-sub000/internal/config"
	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/telemetry"
	"github.com/stellar/go-stellar-sdk/clients/rpcclient"
	protocol "github.com/stellar/go-stellar-sdk/protocols/rpc"
	"go.opentelemetry.io/otel/attribute"
)

// LedgerEntryGetter is the part of the Soroban RPC API the client needs.
// *rpcclient.Client satisfies it.
type LedgerEntryGetter interface {
	GetLedgerEntries(ctx context.Context, req protocol.GetLedgerEntriesRequest) (protocol.GetLedgerEntriesResponse, error)
}

type healthChecker interface {
	GetHealth(ctx context.Context) (protocol.GetHealthResponse, error)
}

// WasmCache stores contract code by its hex-encoded hash.
type WasmCache interface {
	GetWasm(ctx context.Context, hash string) ([]byte, bool, error)
	PutWasm(ctx context.Context, hash string, code []byte) error
}

// authTransport is a custom HTTP RoundTripper that adds authentication headers
type authTransport struct {
	token     string
	transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper interface
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.transport.RoundTrip(req)
}

// Client handles interactions with a Soroban RPC server
type Client struct {
	Network config.Network
	URL     string

	getter LedgerEntryGetter
	cache  WasmCache
	closer func()
}

// NewClient builds a client from options. Without WithURL the network's
// default RPC endpoint is used.
func NewClient(opts ...ClientOption) (*Client, error) {
	b := newBuilder()
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b.build()
}

// GetLedgerEntries fetches the current state of ledger entries. keys are
// base64-encoded XDR LedgerKeys; the result maps each found key to its
// base64-encoded LedgerEntryData.
func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_ledger_entries")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.Int("keys.count", len(keys)),
	)
	defer span.End()

	logger.Logger.Debug("Fetching ledger entries", "count", len(keys), "url", c.URL)

	resp, err := c.getter.GetLedgerEntries(ctx, protocol.GetLedgerEntriesRequest{Keys: keys})
	if err != nil {
		span.RecordError(err)
		logger.Logger.Error("Failed to fetch ledger entries", "url", c.URL, "error", err)
		return nil, errors.WrapRPCConnectionFailed(err)
	}

	entries := make(map[string]string, len(resp.Entries))
	for _, entry := range resp.Entries {
		entries[entry.KeyXDR] = entry.DataXDR
	}

	span.SetAttributes(attribute.Int("entries.found", len(entries)))
	logger.Logger.Debug("Ledger entries fetched", "found", len(entries), "requested", len(keys), "latest_ledger", resp.LatestLedger)

	return entries, nil
}

// Health reports the server status and latest ledger.
func (c *Client) Health(ctx context.Context) (protocol.GetHealthResponse, error) {
	hc, ok := c.getter.(healthChecker)
	if !ok {
		return protocol.GetHealthResponse{}, fmt.Errorf("ledger entry source does not report health")
	}
	resp, err := hc.GetHealth(ctx)
	if err != nil {
		return protocol.GetHealthResponse{}, errors.WrapRPCConnectionFailed(err)
	}
	return resp, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func newRPCClient(url string, httpClient *http.Client) *rpcclient.Client {
	return rpcclient.NewClient(url, httpClient)
}
