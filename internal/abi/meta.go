// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// Well-known contractmetav0 keys written by the Rust SDK.
const (
	MetaKeySDKVersion  = "rssdkver"
	MetaKeyRustVersion = "rsver"
)

// ContractMeta is the build metadata a contract publishes next to its spec.
type ContractMeta struct {
	Entries     []MetaEntry `json:"entries,omitempty"`
	SDKVersion  string      `json:"sdkVersion,omitempty"`
	SDKCommit   string      `json:"sdkCommit,omitempty"`
	RustVersion string      `json:"rustVersion,omitempty"`
	Protocol    uint32      `json:"protocol,omitempty"`
	PreRelease  uint32      `json:"preRelease,omitempty"`
}

type MetaEntry struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// DecodeContractMeta reads concatenated ScMetaEntry values from a
// contractmetav0 payload.
func DecodeContractMeta(data []byte) (*ContractMeta, error) {
	meta := &ContractMeta{}
	reader := bytes.NewReader(data)

	for reader.Len() > 0 {
		var entry xdr.ScMetaEntry
		if _, err := xdr.Unmarshal(reader, &entry); err != nil {
			return nil, fmt.Errorf("decoding meta entry %d: %w", len(meta.Entries), err)
		}
		if entry.Kind != xdr.ScMetaKindScMetaV0 || entry.V0 == nil {
			continue
		}
		kv := MetaEntry{Key: entry.V0.Key, Val: entry.V0.Val}
		meta.Entries = append(meta.Entries, kv)

		switch kv.Key {
		case MetaKeySDKVersion:
			meta.SDKVersion, meta.SDKCommit = parseSDKVersion(kv.Val)
		case MetaKeyRustVersion:
			if v, err := version.NewVersion(kv.Val); err == nil {
				meta.RustVersion = v.String()
			}
		}
	}

	return meta, nil
}

// DecodeEnvMeta reads the protocol interface version from a
// contractenvmetav0 payload into meta.
func DecodeEnvMeta(data []byte, meta *ContractMeta) error {
	reader := bytes.NewReader(data)
	for reader.Len() > 0 {
		var entry xdr.ScEnvMetaEntry
		if _, err := xdr.Unmarshal(reader, &entry); err != nil {
			return fmt.Errorf("decoding env meta entry: %w", err)
		}
		if entry.Kind == xdr.ScEnvMetaKindScEnvMetaKindInterfaceVersion && entry.InterfaceVersion != nil {
			meta.Protocol = uint32(entry.InterfaceVersion.Protocol)
			meta.PreRelease = uint32(entry.InterfaceVersion.PreRelease)
		}
	}
	return nil
}

// parseSDKVersion splits "22.0.7#211569aa" into a normalized version and the
// commit. An unparsable version is dropped.
func parseSDKVersion(raw string) (string, string) {
	ver, commit, _ := strings.Cut(raw, "#")
	v, err := version.NewVersion(strings.TrimSpace(ver))
	if err != nil {
		return "", commit
	}
	return v.String(), commit
}

// SDKAtLeast reports whether the contract was built with an SDK satisfying
// the minimum version min.
func (m *ContractMeta) SDKAtLeast(min string) (bool, error) {
	if m == nil || m.SDKVersion == "" {
		return false, nil
	}
	have, err := version.NewVersion(m.SDKVersion)
	if err != nil {
		return false, err
	}
	want, err := version.NewVersion(min)
	if err != nil {
		return false, err
	}
	return have.GreaterThanOrEqual(want), nil
}

// ReadMeta collects contractmetav0 and contractenvmetav0 from a WASM module.
// It returns nil when neither section exists.
func ReadMeta(wasm []byte) (*ContractMeta, error) {
	metaBytes, err := ExtractCustomSection(wasm, SectionMeta)
	if err != nil {
		return nil, err
	}
	envBytes, err := ExtractCustomSection(wasm, SectionEnvMeta)
	if err != nil {
		return nil, err
	}
	if metaBytes == nil && envBytes == nil {
		return nil, nil
	}

	meta := &ContractMeta{}
	if metaBytes != nil {
		if meta, err = DecodeContractMeta(metaBytes); err != nil {
			return nil, err
		}
	}
	if envBytes != nil {
		if err := DecodeEnvMeta(envBytes, meta); err != nil {
			return nil, err
		}
	}
	return meta, nil
}
