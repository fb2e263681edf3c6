// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup sources for InterfaceLookups.
const (
	SourceNative = "native"
	SourceAsset  = "asset"
	SourceWasm   = "wasm"
)

// Throughput metrics
var (
	InterfaceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playground_interface_lookups_total",
			Help: "Total number of contract interface lookups by source",
		},
		[]string{"source"},
	)

	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playground_decode_failures_total",
			Help: "Total number of contract spec decodes that failed, by reason",
		},
		[]string{"reason"},
	)

	FallbackTags = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playground_spec_fallback_tags_total",
			Help: "Type tags rendered through the generic fallback rule",
		},
		[]string{"tag"},
	)
)

// Cache metrics
var (
	WasmCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playground_wasm_cache_hits_total",
		Help: "Contract WASM served from the local cache",
	})

	WasmCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playground_wasm_cache_misses_total",
		Help: "Contract WASM fetched from RPC because the cache had no entry",
	})
)

// Performance metrics
var (
	RPCFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playground_rpc_fetch_duration_seconds",
		Help:    "Time taken to fetch a contract's WASM over RPC",
		Buckets: prometheus.DefBuckets,
	})
)
