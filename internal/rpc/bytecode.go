// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/JoseCToscano/policies-playground-sub000/internal/metrics"
	"github.com/JoseCToscano/policies-playground-sub000/internal/telemetry"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
	"go.opentelemetry.io/otel/attribute"
)

// LedgerKeyForContractInstance builds the key of a contract's persistent
// instance entry, which holds its executable.
func LedgerKeyForContractInstance(contractID xdr.ContractId) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract: xdr.ScAddress{
				Type:       xdr.ScAddressTypeScAddressTypeContract,
				ContractId: &contractID,
			},
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
}

// LedgerKeyForContractCode builds the key of an uploaded WASM blob.
func LedgerKeyForContractCode(hash xdr.Hash) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: hash},
	}
}

// ContractExecutable reads the executable out of a contract instance entry.
func ContractExecutable(entryXDR string) (xdr.ContractExecutable, error) {
	data, err := decodeEntryData(entryXDR)
	if err != nil {
		return xdr.ContractExecutable{}, err
	}
	if data.Type != xdr.LedgerEntryTypeContractData || data.ContractData == nil {
		return xdr.ContractExecutable{}, fmt.Errorf("not a contract data entry")
	}
	val := data.ContractData.Val
	if val.Type != xdr.ScValTypeScvContractInstance || val.Instance == nil {
		return xdr.ContractExecutable{}, fmt.Errorf("contract data is not a contract instance")
	}
	return val.Instance.Executable, nil
}

const strkeyContractLen = 56

// ParseContractID decodes a contract ID from strkey (C...) or 32-byte hex.
func ParseContractID(contractIDStr string) (xdr.ContractId, error) {
	s := strings.TrimSpace(contractIDStr)
	if len(s) == 0 {
		return xdr.ContractId{}, errors.WrapInvalidContractID(contractIDStr, fmt.Errorf("empty contract id"))
	}

	var raw []byte
	var err error
	switch len(s) {
	case strkeyContractLen:
		raw, err = strkey.Decode(strkey.VersionByteContract, s)
	case hex.EncodedLen(32):
		raw, err = hex.DecodeString(s)
	default:
		err = fmt.Errorf("expected %d-char strkey or 64-char hex, got %d chars", strkeyContractLen, len(s))
	}
	if err != nil {
		return xdr.ContractId{}, errors.WrapInvalidContractID(contractIDStr, err)
	}
	if len(raw) != 32 {
		return xdr.ContractId{}, errors.WrapInvalidContractID(contractIDStr, fmt.Errorf("contract id must be 32 bytes, got %d", len(raw)))
	}

	var cid xdr.ContractId
	copy(cid[:], raw)
	return cid, nil
}

// FetchContractWasm resolves a contract's WASM through its instance entry.
// It returns the hex-encoded code hash and the code. A Stellar asset
// contract has no WASM and yields ErrAssetContract.
func (c *Client) FetchContractWasm(ctx context.Context, contractIDStr string) (string, []byte, error) {
	cid, err := ParseContractID(contractIDStr)
	if err != nil {
		return "", nil, err
	}

	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_fetch_contract_wasm")
	span.SetAttributes(attribute.String("contract.id", contractIDStr))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RPCFetchDuration.Observe(time.Since(start).Seconds())
	}()

	instanceKey, err := EncodeLedgerKey(LedgerKeyForContractInstance(cid))
	if err != nil {
		return "", nil, err
	}
	instance, err := c.GetLedgerEntries(ctx, []string{instanceKey})
	if err != nil {
		return "", nil, err
	}
	instanceXDR, ok := instance[instanceKey]
	if !ok || instanceXDR == "" {
		return "", nil, errors.WrapContractNotFound(contractIDStr)
	}

	exec, err := ContractExecutable(instanceXDR)
	if err != nil {
		return "", nil, fmt.Errorf("reading instance of %s: %w", contractIDStr, err)
	}
	switch exec.Type {
	case xdr.ContractExecutableTypeContractExecutableWasm:
		if exec.WasmHash == nil {
			return "", nil, fmt.Errorf("instance of %s has nil wasm hash", contractIDStr)
		}
	case xdr.ContractExecutableTypeContractExecutableStellarAsset:
		return "", nil, errors.WrapAssetContract(contractIDStr)
	default:
		return "", nil, fmt.Errorf("executable type %v is not WASM", exec.Type)
	}

	codeHash := *exec.WasmHash
	hashHex := hex.EncodeToString(codeHash[:])
	span.SetAttributes(attribute.String("wasm.hash", hashHex))

	if code, ok := c.cachedWasm(ctx, hashHex); ok {
		return hashHex, code, nil
	}

	codeKey, err := EncodeLedgerKey(LedgerKeyForContractCode(codeHash))
	if err != nil {
		return "", nil, err
	}
	codeEntries, err := c.GetLedgerEntries(ctx, []string{codeKey})
	if err != nil {
		return "", nil, err
	}
	codeXDR, ok := codeEntries[codeKey]
	if !ok || codeXDR == "" {
		return "", nil, errors.WrapContractNotFound(fmt.Sprintf("%s (code %s)", contractIDStr, hashHex))
	}

	data, err := decodeEntryData(codeXDR)
	if err != nil {
		return "", nil, err
	}
	if data.Type != xdr.LedgerEntryTypeContractCode || data.ContractCode == nil {
		return "", nil, fmt.Errorf("code entry for %s is not contract code", hashHex)
	}
	code := data.ContractCode.Code
	if sum := sha256.Sum256(code); sum != [32]byte(codeHash) {
		return "", nil, fmt.Errorf("code entry for %s does not match its hash", hashHex)
	}

	if c.cache != nil {
		if err := c.cache.PutWasm(ctx, hashHex, code); err != nil {
			logger.Logger.Warn("Failed to cache contract code", "hash", hashHex, "error", err)
		}
	}

	logger.Logger.Debug("Fetched contract code", "contract_id", contractIDStr, "hash", hashHex, "size", len(code))
	return hashHex, code, nil
}

func (c *Client) cachedWasm(ctx context.Context, hashHex string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	code, ok, err := c.cache.GetWasm(ctx, hashHex)
	if err != nil {
		logger.Logger.Warn("Contract code cache lookup failed", "hash", hashHex, "error", err)
		return nil, false
	}
	if !ok {
		metrics.WasmCacheMisses.Inc()
		return nil, false
	}
	metrics.WasmCacheHits.Inc()
	logger.Logger.Debug("Contract code served from cache", "hash", hashHex)
	return code, true
}
