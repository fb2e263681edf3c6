// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"context"

	"github.com/JoseCToscano/policies-playground-sub000/internal/abi"
	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/metrics"
	"github.com/JoseCToscano/policies-playground-sub000/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// WasmSource fetches a deployed contract's code. *rpc.Client implements it.
type WasmSource interface {
	FetchContractWasm(ctx context.Context, contractID string) (string, []byte, error)
}

// LookupRecorder keeps a history of resolved contracts. *db.Store implements
// it.
type LookupRecorder interface {
	RecordLookup(ctx context.Context, contractID, network, wasmHash string) error
}

// Resolver turns an address into a contract interface.
type Resolver struct {
	source   WasmSource
	recorder LookupRecorder
	network  string
	renderer abi.Renderer
}

type Option func(*Resolver)

func WithMaxDepth(depth int) Option {
	return func(r *Resolver) { r.renderer.MaxDepth = depth }
}

func WithRecorder(rec LookupRecorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// WithNetwork labels recorded lookups.
func WithNetwork(name string) Option {
	return func(r *Resolver) { r.network = name }
}

// NewResolver builds a resolver. source may be nil when only asset
// contracts and local decoding are needed.
func NewResolver(source WasmSource, opts ...Option) *Resolver {
	r := &Resolver{source: source}
	r.renderer.OnFallback = ReportFallback
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Renderer returns the renderer configured for this resolver.
func (r *Resolver) Renderer() abi.Renderer {
	return r.renderer
}

// ReportFallback logs and counts a tag rendered through the generic rule.
func ReportFallback(token string) {
	metrics.FallbackTags.WithLabelValues(token).Inc()
	logger.Logger.Warn("Rendered unmapped spec type through fallback", "token", token)
}

// Interface resolves address. Asset contracts ("native" or CODE-ISSUER)
// never reach the network. Anything else is treated as a contract id whose
// WASM is fetched and decoded.
func (r *Resolver) Interface(ctx context.Context, address string) (*abi.ContractInterface, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "resolve_contract_interface")
	span.SetAttributes(attribute.String("contract.address", address))
	defer span.End()

	if IsVirtual(address) {
		source := metrics.SourceAsset
		if address == NativeAddress {
			source = metrics.SourceNative
		}
		span.SetAttributes(attribute.String("source", source))
		metrics.InterfaceLookups.WithLabelValues(source).Inc()
		r.record(ctx, address, "")
		return AssetInterface(), nil
	}

	if r.source == nil {
		return nil, errors.WrapRPCConnectionFailed(errors.New("no RPC source configured"))
	}

	hash, wasm, err := r.source.FetchContractWasm(ctx, address)
	if errors.Is(err, errors.ErrAssetContract) {
		span.SetAttributes(attribute.String("source", metrics.SourceAsset))
		metrics.InterfaceLookups.WithLabelValues(metrics.SourceAsset).Inc()
		r.record(ctx, address, "")
		return AssetInterface(), nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ci, err := r.renderer.DecodeWasm(wasm)
	if err != nil {
		span.RecordError(err)
		metrics.DecodeFailures.WithLabelValues(FailureReason(err)).Inc()
		logger.Logger.Error("Failed to decode contract spec", "contract_id", address, "hash", hash, "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("source", metrics.SourceWasm),
		attribute.Int("functions", len(ci.Functions)),
	)
	metrics.InterfaceLookups.WithLabelValues(metrics.SourceWasm).Inc()
	r.record(ctx, address, hash)

	logger.Logger.Info("Resolved contract interface",
		"contract_id", address,
		"hash", hash,
		"functions", len(ci.Functions),
		"enums", len(ci.Enums),
		"unions", len(ci.Unions),
	)
	return ci, nil
}

func (r *Resolver) record(ctx context.Context, address, hash string) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordLookup(ctx, address, r.network, hash); err != nil {
		logger.Logger.Warn("Failed to record lookup", "contract_id", address, "error", err)
	}
}

// FailureReason classifies a decode error for metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrMalformedEntry):
		return "malformed_entry"
	case errors.Is(err, errors.ErrTypeTooDeep):
		return "type_too_deep"
	case errors.Is(err, errors.ErrSpecNotFound):
		return "spec_not_found"
	case errors.Is(err, errors.ErrWasmInvalid):
		return "wasm_invalid"
	default:
		return "other"
	}
}
