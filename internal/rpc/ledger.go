// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"encoding/base64"
	"fmt"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// EncodeLedgerKey returns the base64 XDR form getLedgerEntries expects.
func EncodeLedgerKey(key xdr.LedgerKey) (string, error) {
	raw, err := key.MarshalBinary()
	if err != nil {
		return "", errors.WrapMarshalFailed(err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeEntryData parses the base64 LedgerEntryData returned for a key.
func decodeEntryData(entryXDR string) (xdr.LedgerEntryData, error) {
	raw, err := base64.StdEncoding.DecodeString(entryXDR)
	if err != nil {
		return xdr.LedgerEntryData{}, fmt.Errorf("decode ledger entry: %w", err)
	}

	var data xdr.LedgerEntryData
	if err := data.UnmarshalBinary(raw); err != nil {
		return xdr.LedgerEntryData{}, errors.WrapUnmarshalFailed(err, entryXDR)
	}
	return data, nil
}
